package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bstn/internal/domain"
	"bstn/internal/service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ListingsServiceName      = "bstn.listings.v1.ListingsService"
	methodAvailableRooms     = "/" + ListingsServiceName + "/AvailableRooms"
	methodSearchStays        = "/" + ListingsServiceName + "/SearchStays"
	listingsServiceProtoFile = "bstn/listings/v1/listings.proto"
)

// ListingsServer is the read-only listings API. Requests and responses are
// google.protobuf.Struct messages carrying the same fields as the HTTP query
// string and JSON body.
type ListingsServer interface {
	AvailableRooms(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SearchStays(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ListingsServiceDesc = grpc.ServiceDesc{
	ServiceName: ListingsServiceName,
	HandlerType: (*ListingsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AvailableRooms", Handler: availableRoomsHandler},
		{MethodName: "SearchStays", Handler: searchStaysHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: listingsServiceProtoFile,
}

func RegisterListingsServer(s grpc.ServiceRegistrar, srv ListingsServer) {
	s.RegisterService(&ListingsServiceDesc, srv)
}

func availableRoomsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ListingsServer).AvailableRooms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodAvailableRooms}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ListingsServer).AvailableRooms(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func searchStaysHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ListingsServer).SearchStays(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSearchStays}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ListingsServer).SearchStays(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ListingsClient calls ListingsService over an established connection.
type ListingsClient struct {
	cc grpc.ClientConnInterface
}

func NewListingsClient(cc grpc.ClientConnInterface) *ListingsClient {
	return &ListingsClient{cc: cc}
}

func (c *ListingsClient) AvailableRooms(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodAvailableRooms, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ListingsClient) SearchStays(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodSearchStays, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListingsService implements ListingsServer on top of the availability service.
type ListingsService struct {
	availability domain.AvailabilityService
	today        func() time.Time
}

func NewListingsService(availability domain.AvailabilityService, today func() time.Time) *ListingsService {
	return &ListingsService{availability: availability, today: today}
}

func (s *ListingsService) AvailableRooms(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	checkIn, checkOut, err := s.window(req)
	if err != nil {
		return nil, err
	}
	rooms, err := s.availability.AvailableRooms(ctx, stringField(req, "room_type"), checkIn, checkOut)
	if err != nil {
		return nil, grpcError(err)
	}
	return resultsStruct(rooms, len(rooms))
}

func (s *ListingsService) SearchStays(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	checkIn, checkOut, err := s.window(req)
	if err != nil {
		return nil, err
	}
	stays, err := s.availability.SearchStays(ctx, checkIn, checkOut, stringField(req, "room_type"), stringField(req, "city"))
	if err != nil {
		return nil, grpcError(err)
	}
	return resultsStruct(stays, len(stays))
}

func (s *ListingsService) window(req *structpb.Struct) (time.Time, time.Time, error) {
	checkIn, err := parseDate("check_in", stringField(req, "check_in"))
	if err != nil {
		return time.Time{}, time.Time{}, status.Error(codes.InvalidArgument, err.Error())
	}
	checkOut, err := parseDate("check_out", stringField(req, "check_out"))
	if err != nil {
		return time.Time{}, time.Time{}, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := service.ValidateStayDates(checkIn, checkOut, s.today()); err != nil {
		return time.Time{}, time.Time{}, status.Error(codes.InvalidArgument, err.Error())
	}
	return checkIn, checkOut, nil
}

func stringField(req *structpb.Struct, name string) string {
	if req == nil {
		return ""
	}
	v, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

// resultsStruct converts results through their JSON form so the Struct
// carries the same field names as the HTTP API.
func resultsStruct(results any, count int) (*structpb.Struct, error) {
	data, err := json.Marshal(map[string]any{"count": count, "results": results})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode results")
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, "failed to encode results")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to build response: %v", err))
	}
	return out, nil
}

func grpcError(err error) error {
	switch {
	case domain.IsBadRequest(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case domain.IsForbidden(err):
		return status.Error(codes.PermissionDenied, err.Error())
	case domain.IsConflict(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
