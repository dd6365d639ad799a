package dot

import "math"

// hsv is a color in hue/saturation/value space; h in degrees, s and v in
// [0,1]. The ramp interpolates in this space so the midpoints stay
// saturated instead of washing through grey.
type hsv struct {
	h, s, v float64
}

// ramp stops: royalblue, greenyellow, gold, red.
var stops = []hsv{
	rgbToHSV(0x41, 0x69, 0xe1),
	rgbToHSV(0xad, 0xff, 0x2f),
	rgbToHSV(0xff, 0xd7, 0x00),
	rgbToHSV(0xff, 0x00, 0x00),
}

// gradient maps t in [0,1] to a ramp color.
func gradient(t float64) hsv {
	if math.IsNaN(t) || t <= 0 {
		return stops[0]
	}
	if t >= 1 {
		return stops[len(stops)-1]
	}
	scaled := t * float64(len(stops)-1)
	i := int(scaled)
	frac := scaled - float64(i)
	a, b := stops[i], stops[i+1]
	return hsv{
		h: lerpHue(a.h, b.h, frac),
		s: a.s + (b.s-a.s)*frac,
		v: a.v + (b.v-a.v)*frac,
	}
}

// lerpHue interpolates hues along the shortest arc of the color wheel.
func lerpHue(a, b, t float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	h := math.Mod(a+d*t, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func rgbToHSV(r, g, b uint8) hsv {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	d := max - min

	var h float64
	switch {
	case d == 0:
		h = 0
	case max == rf:
		h = 60 * math.Mod((gf-bf)/d, 6)
	case max == gf:
		h = 60 * ((bf-rf)/d + 2)
	default:
		h = 60 * ((rf-gf)/d + 4)
	}
	if h < 0 {
		h += 360
	}
	var s float64
	if max > 0 {
		s = d / max
	}
	return hsv{h: h, s: s, v: max}
}

func (c hsv) rgb() (r, g, b uint8) {
	cc := c.v * c.s
	x := cc * (1 - math.Abs(math.Mod(c.h/60, 2)-1))
	m := c.v - cc

	var rf, gf, bf float64
	switch {
	case c.h < 60:
		rf, gf, bf = cc, x, 0
	case c.h < 120:
		rf, gf, bf = x, cc, 0
	case c.h < 180:
		rf, gf, bf = 0, cc, x
	case c.h < 240:
		rf, gf, bf = 0, x, cc
	case c.h < 300:
		rf, gf, bf = x, 0, cc
	default:
		rf, gf, bf = cc, 0, x
	}
	return uint8(math.Round((rf + m) * 255)),
		uint8(math.Round((gf + m) * 255)),
		uint8(math.Round((bf + m) * 255))
}
