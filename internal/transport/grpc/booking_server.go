package grpc

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/service/appointments"
)

type BookingServer struct {
	svc bookingService
	log *slog.Logger
}

type bookingService interface {
	Availability(ctx context.Context, date string) (appointments.AvailabilityReport, error)
	Book(ctx context.Context, in appointments.BookingInput) (appointments.Confirmation, error)
}

var _ BookingServiceServer = (*BookingServer)(nil)

func NewBookingServer(svc bookingService, log *slog.Logger) *BookingServer {
	if log == nil {
		log = slog.Default()
	}
	return &BookingServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.booking")),
	}
}

func (s *BookingServer) GetAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := s.log.With(slog.String("rpc", "GetAvailability"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	date := stringField(req, "date")
	report, err := s.svc.Availability(ctx, date)
	if err != nil {
		return nil, statusError(log, err, slog.String("date", date))
	}

	mechanics := make([]any, 0, len(report.Mechanics))
	for _, m := range report.Mechanics {
		var photo any
		if m.PhotoURL != "" {
			photo = m.PhotoURL
		}
		mechanics = append(mechanics, map[string]any{
			"id":        m.ID,
			"name":      m.Name,
			"photo_url": photo,
			"bookings":  m.Bookings,
			"remaining": m.Remaining,
			"available": m.Available,
		})
	}

	log.Debug("availability served",
		slog.String("date", domain.FormatDate(report.Date)),
		slog.Int("mechanics", len(mechanics)),
	)

	return newStruct(log, map[string]any{
		"ok":          true,
		"date":        domain.FormatDate(report.Date),
		"date_pretty": domain.PrettyDate(report.Date),
		"mechanics":   mechanics,
	})
}

func (s *BookingServer) BookAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := s.log.With(slog.String("rpc", "BookAppointment"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := appointments.BookingInput{
		MechanicID: idField(req, "mechanic_id"),
		Date:       stringField(req, "date"),
		ClientName: stringField(req, "client_name"),
		Address:    stringField(req, "address"),
		Phone:      stringField(req, "phone"),
		CarLicense: stringField(req, "car_license"),
		CarEngine:  stringField(req, "car_engine"),
	}

	conf, err := s.svc.Book(ctx, in)
	if err != nil {
		return nil, statusError(log, err,
			slog.Int64("mechanic_id", in.MechanicID),
			slog.String("date", in.Date),
		)
	}

	log.Info("appointment booked",
		slog.Int64("appointment_id", conf.AppointmentID),
		slog.Int64("mechanic_id", conf.MechanicID),
		slog.String("date", domain.FormatDate(conf.Date)),
	)

	return newStruct(log, map[string]any{
		"ok":             true,
		"appointment_id": conf.AppointmentID,
		"mechanic_name":  conf.MechanicName,
		"date":           domain.FormatDate(conf.Date),
		"date_pretty":    conf.DatePretty(),
	})
}

func newStruct(log *slog.Logger, m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		log.Error("response encoding failed", slog.Any("err", err))
		return nil, status.Error(codes.Internal, "server error")
	}
	return out, nil
}

func statusError(log *slog.Logger, err error, attrs ...any) error {
	var (
		vErr *appointments.ValidationError
		cErr *appointments.ConflictError
		nErr *appointments.NotFoundError
	)
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.As(err, &cErr):
		log.Info("booking conflict", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.FailedPrecondition, cErr.Error())
	case errors.As(err, &nErr):
		log.Info("not found", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.NotFound, nErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("request timed out", attrs...)
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}
	log.Error("request failed", append([]any{slog.Any("err", err)}, attrs...)...)
	return status.Error(codes.Internal, "server error")
}

// stringField reads key as text. Numbers are rendered without a fractional
// part when they are whole.
func stringField(req *structpb.Struct, key string) string {
	v, ok := req.GetFields()[key]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	}
	return ""
}

// idField reads a positive integer id from a number or a numeric string.
// Anything else reads as 0.
func idField(req *structpb.Struct, key string) int64 {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n <= 0 || n != math.Trunc(n) || n > math.MaxInt64/2 {
			return 0
		}
		return int64(n)
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(k.StringValue), 10, 64)
		if err != nil || n <= 0 {
			return 0
		}
		return n
	}
	return 0
}
