package services

import (
	"context"
	"errors"
	"fmt"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/ports"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TripRequest is the input of CalculateRoute and CreateTripSchedule.
// Field errors are reported under the json names.
type TripRequest struct {
	CurrentLocation   string    `json:"current_location" validate:"max=255"`
	PickupLocation    string    `json:"pickup_location" validate:"required,max=255"`
	DropoffLocation   string    `json:"dropoff_location" validate:"required,max=255"`
	CurrentCycleHours float64   `json:"current_cycle_hours" validate:"gte=0,lte=70"`
	StartAt           time.Time `json:"start_at" validate:"required"`
	DriverName        string    `json:"driver_name" validate:"max=255"`
	VehicleID         string    `json:"vehicle_id" validate:"max=64"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Input trims the request and checks it, returning the trip input or a *domain.ValidationError.
func (r TripRequest) Input() (domain.TripInput, error) {
	r.CurrentLocation = strings.TrimSpace(r.CurrentLocation)
	r.PickupLocation = strings.TrimSpace(r.PickupLocation)
	r.DropoffLocation = strings.TrimSpace(r.DropoffLocation)
	r.DriverName = strings.TrimSpace(r.DriverName)
	r.VehicleID = strings.TrimSpace(r.VehicleID)

	if err := validate.Struct(r); err != nil {
		return domain.TripInput{}, toValidationError(err, r)
	}

	return domain.TripInput{
		CurrentLocation:   r.CurrentLocation,
		PickupLocation:    r.PickupLocation,
		DropoffLocation:   r.DropoffLocation,
		CurrentCycleHours: r.CurrentCycleHours,
		StartAt:           r.StartAt,
		DriverName:        r.DriverName,
		VehicleID:         r.VehicleID,
	}, nil
}

func toValidationError(err error, r TripRequest) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate trip request: %w", err)
	}

	fe := fieldErrs[0]
	if fe.Field() == "current_cycle_hours" {
		return domain.NewInvalidCycleHoursError(r.CurrentCycleHours)
	}

	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "max":
		reason = fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		reason = fmt.Sprintf("failed %s %s", fe.Tag(), fe.Param())
	}
	return domain.NewValidationError(fe.Field(), reason)
}

// CalculateRoute plans the trip and returns the route summary without log sheets.
func CalculateRoute(
	ctx context.Context,
	req TripRequest,
	provider ports.DistanceProvider,
	rules Rules,
) (*domain.RoutePlan, error) {
	_, seg, sched, err := planTrip(ctx, req, provider, rules)
	if err != nil {
		return nil, err
	}

	return buildRoutePlan(seg, sched), nil
}

// CreateTripSchedule plans the trip and returns route, intervals and daily log sheets.
func CreateTripSchedule(
	ctx context.Context,
	req TripRequest,
	provider ports.DistanceProvider,
	rules Rules,
) (*domain.TripSchedule, error) {
	in, seg, sched, err := planTrip(ctx, req, provider, rules)
	if err != nil {
		return nil, err
	}

	sheets := BuildLogSheets(sched.Intervals, sched.StartingCycle, rules)
	for i := range sheets {
		sheets[i].DriverName = in.DriverName
		sheets[i].VehicleID = in.VehicleID
	}

	return &domain.TripSchedule{
		Input:     in,
		Route:     *buildRoutePlan(seg, sched),
		Schedule:  *sched,
		LogSheets: sheets,
	}, nil
}

// planTrip runs segmenter, scheduler and validator. A trip whose driver has no
// cycle time left is rejected before any distance lookup.
func planTrip(
	ctx context.Context,
	req TripRequest,
	provider ports.DistanceProvider,
	rules Rules,
) (domain.TripInput, *domain.Segmentation, *domain.Schedule, error) {
	in, err := req.Input()
	if err != nil {
		return in, nil, nil, err
	}

	if used := hoursToDuration(in.CurrentCycleHours); used >= rules.CycleLimit {
		return in, nil, nil, &domain.UnsplittableLegError{
			LegIndex: -1,
			Reason:   fmt.Sprintf("no cycle hours remaining (%s of %s used)", formatHours(used), formatHours(rules.CycleLimit)),
		}
	}

	seg, err := SegmentRoute(ctx, in.CurrentLocation, in.PickupLocation, in.DropoffLocation, provider, rules)
	if err != nil {
		return in, nil, nil, err
	}

	sched, err := ScheduleTrip(seg, in.CurrentCycleHours, in.StartAt, rules)
	if err != nil {
		return in, nil, nil, err
	}

	if violations := ValidateSchedule(sched.Intervals, sched.StartingCycle, rules); len(violations) > 0 {
		return in, nil, nil, &domain.ComplianceViolationError{Violations: violations}
	}

	return in, seg, sched, nil
}

func buildRoutePlan(seg *domain.Segmentation, sched *domain.Schedule) *domain.RoutePlan {
	return &domain.RoutePlan{
		TotalMiles:            seg.TotalMiles,
		EstimatedDrivingHours: seg.DrivingDuration().Hours(),
		RestStops:             sched.RestStops(),
		FuelStops:             sched.FuelStops,
		Points:                slices.Clone(sched.Stops),
	}
}
