package types

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
)

// LineRole identifies whether a price line opens or closes a position.
type LineRole string

const (
	LineRoleEntry LineRole = "ENTRY"
	LineRoleExit  LineRole = "EXIT"
)

// LineDirection classifies the drawn slope of a price line.
type LineDirection string

const (
	LineDirectionUpward     LineDirection = "UPWARD"
	LineDirectionDownward   LineDirection = "DOWNWARD"
	LineDirectionHorizontal LineDirection = "HORIZONTAL"
)

// LinePoint is a single timestamped anchor of a drawn price trajectory.
type LinePoint struct {
	Time  time.Time `yaml:"time" json:"time" validate:"required"`
	Price float64   `yaml:"price" json:"price" validate:"required,gt=0"`
}

// RawLine is a freehand trajectory as delivered by the charting collaborator:
// an ordered list of timestamped price points. Only the first and last points
// are used as anchors; intermediate points are sampling noise from the drawing
// surface.
type RawLine struct {
	ID     string      `yaml:"id" json:"id" validate:"required"`
	Points []LinePoint `yaml:"points" json:"points" validate:"required,min=2,dive"`
}

// Validate validates the RawLine struct.
func (l *RawLine) Validate() error {
	validate := validator.New()
	if err := validate.Struct(l); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidLine, "invalid raw line", err)
	}

	return nil
}

// AnchorA returns the first drawn point.
func (l RawLine) AnchorA() LinePoint {
	return l.Points[0]
}

// AnchorB returns the last drawn point.
func (l RawLine) AnchorB() LinePoint {
	return l.Points[len(l.Points)-1]
}

// LowerPrice returns the smaller of the two endpoint prices. Role assignment
// orders drawn lines by this value.
func (l RawLine) LowerPrice() float64 {
	a := l.AnchorA().Price
	b := l.AnchorB().Price

	if a < b {
		return a
	}

	return b
}

// SortRawLinesByLowerPrice sorts lines ascending by their lower endpoint price.
// The sort is stable so lines drawn at the same price keep their arrival order.
func SortRawLinesByLowerPrice(lines []RawLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].LowerPrice() < lines[j].LowerPrice()
	})
}
