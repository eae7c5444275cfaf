// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package rpcauth carries the session's bearer token on gRPC calls.
package rpcauth

import (
	"context"
	"crypto/tls"
	"fmt"
	"slices"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// TokenSource yields the current bearer token. *session.Store satisfies it.
type TokenSource interface {
	Token() (string, bool)
}

// PublicMethods may be called without a token.
var PublicMethods = []string{healthpb.Health_Check_FullMethodName}

// Credentials attaches "authorization: Bearer <token>" to every call.
// Without a token no metadata is attached.
type Credentials struct {
	src       TokenSource
	plaintext bool
}

var _ credentials.PerRPCCredentials = Credentials{}

// NewCredentials returns per-RPC credentials reading from src. With plaintext
// set the credentials may be sent over an unencrypted connection.
func NewCredentials(src TokenSource, plaintext bool) Credentials {
	return Credentials{src: src, plaintext: plaintext}
}

func (c Credentials) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	tok, ok := c.src.Token()
	if !ok {
		return nil, nil
	}
	return map[string]string{"authorization": "Bearer " + tok}, nil
}

func (c Credentials) RequireTransportSecurity() bool { return !c.plaintext }

// UnaryClientInterceptor fails calls with codes.Unauthenticated before they
// reach the network when src holds no token. Methods listed in public pass.
func UnaryClientInterceptor(src TokenSource, public ...string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if _, ok := src.Token(); !ok && !slices.Contains(public, method) {
			return status.Errorf(codes.Unauthenticated, "%s: not logged in", method)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Dial creates a client connection to addr authenticated from src. TLS is
// used unless plaintext is set. extra options are appended last.
func Dial(addr string, src TokenSource, plaintext bool, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	transport := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if plaintext {
		transport = insecure.NewCredentials()
	}

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(transport),
		grpc.WithPerRPCCredentials(NewCredentials(src, plaintext)),
		grpc.WithUnaryInterceptor(UnaryClientInterceptor(src, PublicMethods...)),
	}, extra...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client %s: %w", addr, err)
	}
	return conn, nil
}

// CheckHealth queries the standard health service for service ("" for the
// whole server).
func CheckHealth(ctx context.Context, cc grpc.ClientConnInterface, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := healthpb.NewHealthClient(cc).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
