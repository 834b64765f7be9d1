package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/server/gate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const authorizationKey = "authorization"

var healthServicePrefix = "/" + healthpb.Health_ServiceDesc.ServiceName + "/"

func public(method string) bool {
	return strings.HasPrefix(method, healthServicePrefix)
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if public(info.FullMethod) {
		return handler(ctx, req)
	}

	ctx, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *authenticatedStream) Context() context.Context { return a.ctx }

func (s *GRPCServer) accessTokenStreamInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if public(info.FullMethod) {
		return handler(srv, ss)
	}

	ctx, err := s.authenticate(ss.Context())
	if err != nil {
		return err
	}
	return handler(srv, &authenticatedStream{ServerStream: ss, ctx: ctx})
}

func (s *GRPCServer) authenticate(ctx context.Context) (context.Context, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(authorizationKey); len(values) > 0 {
			header = values[0]
		}
	}

	userID, token, err := s.gate.Authenticate(ctx, header)
	if err != nil {
		return nil, toStatus(err)
	}
	return gate.WithUser(ctx, userID, token), nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, gate.ErrNoToken):
		return status.Error(codes.Unauthenticated, "No token provided")
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, "Token expired")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenRevoked):
		return status.Error(codes.Unauthenticated, "Invalid token")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
