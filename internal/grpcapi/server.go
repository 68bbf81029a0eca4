// Package grpcapi exposes order placement over gRPC as the service
// checkout.v1.Orders. Messages are google.protobuf.Struct documents with the
// same field names as the HTTP JSON bodies.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/MikeMC777/ordenes-checkout/internal/order"
)

const ServiceName = "checkout.v1.Orders"

// OrdersServer is the server API of checkout.v1.Orders.
type OrdersServer interface {
	PlaceOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	SetStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(method string, call func(OrdersServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OrdersServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(OrdersServer), ctx, req.(*structpb.Struct))
		})
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrdersServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PlaceOrder", Handler: unaryHandler("PlaceOrder", OrdersServer.PlaceOrder)},
		{MethodName: "GetOrder", Handler: unaryHandler("GetOrder", OrdersServer.GetOrder)},
		{MethodName: "SetStatus", Handler: unaryHandler("SetStatus", OrdersServer.SetStatus)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "checkout/v1/orders.proto",
}

// Register adds the orders service and a health service reporting SERVING.
func Register(s *grpc.Server, srv OrdersServer) *health.Server {
	s.RegisterService(&ServiceDesc, srv)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return hs
}

type Server struct {
	svc    *order.Service
	logger *zap.Logger
}

func NewServer(svc *order.Service, logger *zap.Logger) *Server {
	return &Server{svc: svc, logger: logger}
}

func decode(in *structpb.Struct, dst any) error {
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return status.Error(codes.InvalidArgument, "invalid request")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return status.Error(codes.InvalidArgument, "invalid request")
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func missingCustomerField(r order.CreateOrderRequest) string {
	fields := []struct{ name, value string }{
		{"name", r.Name}, {"email", r.Email}, {"contact", r.Contact}, {"address", r.Address},
		{"zip_code", r.ZipCode}, {"city", r.City}, {"state", r.State},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

// toStatus maps service errors to gRPC codes. Storage failures never leak.
func (s *Server) toStatus(err error) error {
	var (
		notFound     *order.ProductNotFoundError
		outOfStock   *order.OutOfStockError
		insufficient *order.InsufficientStockError
		badQty       *order.InvalidQuantityError
	)
	switch {
	case errors.Is(err, order.ErrEmptyCart), errors.Is(err, order.ErrInvalidStatus), errors.As(err, &badQty):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, order.ErrNotFound), errors.As(err, &notFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &outOfStock), errors.As(err, &insufficient):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		s.logger.Error("grpc call failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *Server) PlaceOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req order.CreateOrderRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if f := missingCustomerField(req); f != "" {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("%s is required", f))
	}
	sum, err := s.svc.PlaceOrder(ctx, req.Customer(), req.Cart())
	if err != nil {
		return nil, s.toStatus(err)
	}
	return encode(sum)
}

type idRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (s *Server) GetOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	o, err := s.svc.GetOrder(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return encode(o)
}

func (s *Server) SetStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	st, err := order.ParseStatus(req.Status)
	if err != nil {
		return nil, s.toStatus(err)
	}
	if err := s.svc.SetStatus(ctx, req.ID, st); err != nil {
		return nil, s.toStatus(err)
	}
	return encode(map[string]string{"id": req.ID, "status": string(st)})
}
