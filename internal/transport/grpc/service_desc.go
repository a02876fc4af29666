package grpc

import (
	"context"
	"time"

	grpclib "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const BookingServiceName = "carfixer.v1.BookingService"

const (
	getAvailabilityMethod = "/" + BookingServiceName + "/GetAvailability"
	bookAppointmentMethod = "/" + BookingServiceName + "/BookAppointment"
)

// BookingServiceServer is the public booking API. Messages are
// google.protobuf.Struct so clients need no generated stubs.
type BookingServiceServer interface {
	GetAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	BookAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var BookingServiceDesc = grpclib.ServiceDesc{
	ServiceName: BookingServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "GetAvailability", Handler: getAvailabilityHandler},
		{MethodName: "BookAppointment", Handler: bookAppointmentHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "carfixer/v1/booking.proto",
}

func RegisterBookingServiceServer(s grpclib.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

func getAvailabilityHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookingServiceServer).GetAvailability(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: getAvailabilityMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BookingServiceServer).GetAvailability(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func bookAppointmentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookingServiceServer).BookAppointment(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: bookAppointmentMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BookingServiceServer).BookAppointment(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type BookingServiceClient struct {
	cc grpclib.ClientConnInterface
}

func NewBookingServiceClient(cc grpclib.ClientConnInterface) *BookingServiceClient {
	return &BookingServiceClient{cc: cc}
}

func (c *BookingServiceClient) GetAvailability(ctx context.Context, in *structpb.Struct, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getAvailabilityMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) BookAppointment(ctx context.Context, in *structpb.Struct, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, bookAppointmentMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// TimeoutInterceptor applies timeout to calls that arrive without a deadline.
func TimeoutInterceptor(timeout time.Duration) grpclib.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context, req any, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}
