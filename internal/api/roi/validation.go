package roi

import (
	"GateROI/internal/entity"

	"github.com/go-playground/validator/v10"
)

// GateROIStructLevel checks the corner count against the shape. A rectangle
// is exactly two corners, a polygon at least three.
func GateROIStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(CreateGateROIRequest)

	shape := entity.Shape(req.Shape)
	if shape == "" {
		shape = entity.ShapePolygon
	}
	if !entity.IsValidShape(string(shape)) {
		return
	}

	n := len(req.Coordinates)
	switch {
	case shape == entity.ShapeRectangle && n != 2:
		sl.ReportError(req.Coordinates, "coordinates", "Coordinates", "rectangle", "2")
	case n < shape.MinPoints():
		sl.ReportError(req.Coordinates, "coordinates", "Coordinates", "polygon", "3")
	}
}
