// Package progress reports informational messages and completion
// percentages on stderr. Everything it prints is cosmetic: output is
// suppressed globally by SetQuiet, and write failures are ignored.
package progress
