package catalog

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Input is a request body that can be validated and applied to a record of type T.
//
// With partial=false every required field must be present (create). With
// partial=true absent fields are left untouched (update).
type Input[T Record] interface {
	Validate(partial bool) map[string]string
	Apply(rec *T)
}

// SpotInput is the create/update body for spots. Nil fields are absent.
type SpotInput struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Difficulty  *string `json:"difficulty"`
	ImageURL    *string `json:"image_url"`
}

func (in SpotInput) Validate(partial bool) map[string]string {
	v := validator{}
	v.length("name", in.Name, 3, 255, partial)
	v.length("location", in.Location, 3, 0, partial)
	v.oneOf("difficulty", in.Difficulty, partial, func(s string) bool { return Difficulty(s).Valid() },
		"must be one of easy, medium, hard")
	v.imageURL("image_url", in.ImageURL)
	return v.result()
}

func (in SpotInput) Apply(s *Spot) {
	set(&s.Name, in.Name)
	set(&s.Location, in.Location)
	set(&s.Description, in.Description)
	if in.Difficulty != nil {
		s.Difficulty = Difficulty(strings.TrimSpace(*in.Difficulty))
	}
	set(&s.ImageURL, in.ImageURL)
}

// GearInput is the create/update body for gear reviews.
type GearInput struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Brand       *string `json:"brand"`
	Description *string `json:"description"`
	Rating      *int    `json:"rating"`
	ImageURL    *string `json:"image_url"`
}

func (in GearInput) Validate(partial bool) map[string]string {
	v := validator{}
	v.length("name", in.Name, 3, 255, partial)
	v.oneOf("category", in.Category, partial, func(s string) bool { return Category(s).Valid() },
		"must be one of deck, truck, wheel")
	v.length("brand", in.Brand, 2, 255, partial)
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		v.add("rating", "must be an integer between 1 and 5")
	}
	v.imageURL("image_url", in.ImageURL)
	return v.result()
}

func (in GearInput) Apply(g *Gear) {
	set(&g.Name, in.Name)
	if in.Category != nil {
		g.Category = Category(strings.TrimSpace(*in.Category))
	}
	set(&g.Brand, in.Brand)
	set(&g.Description, in.Description)
	if in.Rating != nil {
		r := *in.Rating
		g.Rating = &r
	}
	set(&g.ImageURL, in.ImageURL)
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

type validator map[string]string

func (v validator) add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

func (v validator) result() map[string]string {
	if len(v) == 0 {
		return nil
	}
	return v
}

// length checks rune length in [lo, hi]; hi <= 0 means unbounded.
func (v validator) length(field string, s *string, lo, hi int, partial bool) {
	if s == nil {
		if !partial {
			v.add(field, "is required")
		}
		return
	}
	n := utf8.RuneCountInString(strings.TrimSpace(*s))
	switch {
	case hi > 0 && (n < lo || n > hi):
		v.add(field, fmt.Sprintf("must be between %d and %d characters", lo, hi))
	case n < lo:
		v.add(field, fmt.Sprintf("must be at least %d characters", lo))
	}
}

func (v validator) oneOf(field string, s *string, partial bool, ok func(string) bool, msg string) {
	if s == nil {
		if !partial {
			v.add(field, "is required")
		}
		return
	}
	if !ok(strings.TrimSpace(*s)) {
		v.add(field, msg)
	}
}

// imageURL accepts an empty string or an absolute http(s) URL.
func (v validator) imageURL(field string, s *string) {
	if s == nil {
		return
	}
	raw := strings.TrimSpace(*s)
	if raw == "" {
		return
	}
	if len(raw) > 2048 {
		v.add(field, "must be at most 2048 characters")
		return
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.add(field, "must be an absolute http(s) URL")
	}
}
