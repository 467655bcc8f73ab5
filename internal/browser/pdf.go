package browser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// paperSizes holds width and height in inches, keyed by the lowercased
// names in config.PageSizes.
var paperSizes = map[string][2]float64{
	"a4":     {8.27, 11.69},
	"letter": {8.5, 11},
	"legal":  {8.5, 14},
}

// PaperSize returns the dimensions of a named paper size in inches.
func PaperSize(name string) (width, height float64, err error) {
	if name == "" {
		name = "A4"
	}
	dims, ok := paperSizes[strings.ToLower(name)]
	if !ok {
		return 0, 0, fmt.Errorf("unknown page size %q", name)
	}
	return dims[0], dims[1], nil
}

// ParseLength converts a CSS length (in, cm, mm, px, pt) to inches.
// A bare number is taken as inches.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, nil
	}
	units := []struct {
		suffix  string
		perInch float64
	}{
		{"in", 1},
		{"cm", 2.54},
		{"mm", 25.4},
		{"px", 96},
		{"pt", 72},
	}
	per := 1.0
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			per = u.perInch
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative length %q", s)
	}
	return v / per, nil
}

func printRequest(pageSize, margin string) (*proto.PagePrintToPDF, error) {
	w, h, err := PaperSize(pageSize)
	if err != nil {
		return nil, err
	}
	m, err := ParseLength(margin)
	if err != nil {
		return nil, err
	}
	return &proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      &w,
		PaperHeight:     &h,
		MarginTop:       &m,
		MarginBottom:    &m,
		MarginLeft:      &m,
		MarginRight:     &m,
	}, nil
}
