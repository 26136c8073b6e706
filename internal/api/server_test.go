package api

import (
	"context"
	"net"
	"testing"
	"time"

	"bstn/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func startGRPC(t *testing.T, cfg *config.APIConfig) (*testEnv, *ListingsClient) {
	t.Helper()
	env := newTestEnv(t, nil)
	logger := zerolog.Nop()

	lis := bufconn.Listen(1 << 20)
	srv, err := newGRPCServer(cfg, lis, env.svc, &logger)
	require.NoError(t, err)
	go func() { _ = srv.Serve() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return env, NewListingsClient(conn)
}

func request(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestGRPC_AvailableRooms(t *testing.T) {
	env, client := startGRPC(t, &config.APIConfig{})
	ctx := context.Background()

	resp, err := client.AvailableRooms(ctx, request(t, map[string]any{
		"check_in":  "2025-06-01",
		"check_out": "2025-06-04",
		"room_type": "hotel",
	}))
	require.NoError(t, err)
	assert.Equal(t, float64(1), resp.GetFields()["count"].GetNumberValue())

	results := resp.GetFields()["results"].GetListValue().GetValues()
	require.Len(t, results, 1)
	room := results[0].GetStructValue().GetFields()
	assert.Equal(t, "hotel", room["room_type"].GetStringValue())
	assert.Equal(t, "Lakeside Inn", room["stay_name"].GetStringValue())
	assert.Equal(t, float64(env.roomID), room["room"].GetStructValue().GetFields()["id"].GetNumberValue())
}

func TestGRPC_SearchStays(t *testing.T) {
	env, client := startGRPC(t, &config.APIConfig{})

	resp, err := client.SearchStays(context.Background(), request(t, map[string]any{
		"check_in":  "2025-06-01",
		"check_out": "2025-06-04",
		"city":      "POKHARA",
	}))
	require.NoError(t, err)
	results := resp.GetFields()["results"].GetListValue().GetValues()
	require.Len(t, results, 1)
	stay := results[0].GetStructValue().GetFields()
	assert.Equal(t, float64(env.hotelID), stay["id"].GetNumberValue())
	assert.Equal(t, float64(1), stay["available_room_count"].GetNumberValue())
}

func TestGRPC_InvalidArguments(t *testing.T) {
	_, client := startGRPC(t, &config.APIConfig{})
	ctx := context.Background()

	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"missing dates", map[string]any{}},
		{"bad date", map[string]any{"check_in": "tomorrow", "check_out": "2025-06-04"}},
		{"reversed", map[string]any{"check_in": "2025-06-04", "check_out": "2025-06-01"}},
		{"past", map[string]any{"check_in": "2025-01-01", "check_out": "2025-01-02"}},
		{"unknown type", map[string]any{"check_in": "2025-06-01", "check_out": "2025-06-04", "room_type": "tent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.SearchStays(ctx, request(t, tt.fields))
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestGRPC_APIKeyRequired(t *testing.T) {
	cfg := &config.APIConfig{Auth: config.APIAuthConfig{
		Enabled: true,
		APIKeys: []config.APIClientKey{{Key: "k1", Name: "frontend"}},
	}}
	_, client := startGRPC(t, cfg)
	req := request(t, map[string]any{"check_in": "2025-06-01", "check_out": "2025-06-04"})

	_, err := client.SearchStays(context.Background(), req)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-api-key", "k1")
	var header metadata.MD
	_, err = client.SearchStays(ctx, req, grpc.Header(&header))
	require.NoError(t, err)
	assert.NotEmpty(t, header.Get(requestIDMetadataKey))
}

func TestBuildTLSConfig(t *testing.T) {
	t.Run("EmptyPaths", func(t *testing.T) {
		_, err := buildTLSConfig(config.APITLSConfig{Enabled: true})
		assert.Error(t, err)
	})

	t.Run("InvalidCert", func(t *testing.T) {
		_, err := buildTLSConfig(config.APITLSConfig{
			Enabled:  true,
			CertFile: "/nonexistent",
			KeyFile:  "/nonexistent",
		})
		assert.Error(t, err)
	})
}

func TestGRPCServer_New(t *testing.T) {
	env := newTestEnv(t, nil)
	logger := zerolog.Nop()

	s, err := NewGRPCServer(&config.APIConfig{}, env.svc, &logger)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Addr())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Shutdown(ctx)

	_, err = newGRPCServer(&config.APIConfig{}, bufconn.Listen(1024), Services{}, &logger)
	assert.Error(t, err)
}
