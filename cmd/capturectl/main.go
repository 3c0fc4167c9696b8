// capturectl drives a running bridge server from the command line
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/capture"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/health"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/hostclient"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/resilience"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/trace"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	url      string
	logLevel string
	timeout  time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "capturectl",
		Short:         "Control a screen capture bridge",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var level slog.Level
			if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
				level = slog.LevelInfo
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVar(&opts.url, "url", "ws://localhost:8000/ws", "Bridge WebSocket URL")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall deadline")

	cmd.AddCommand(newCaptureCommand(opts), newResizeCommand(opts), newHealthCommand(opts))
	return cmd
}

func newCaptureCommand(opts *rootOptions) *cobra.Command {
	var req capture.Request
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture the viewport and print the acknowledgement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.ID == "" {
				req.ID = trace.New().TraceID
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			c, err := hostclient.Dial(ctx, opts.url)
			if err != nil {
				return err
			}
			defer c.Close()

			ack, err := c.Capture(ctx, req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(ack); err != nil {
				return err
			}
			if !ack.OK {
				return fmt.Errorf("capture %s failed: %s", ack.ID, ack.Error.Code)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ID, "id", "", "Correlation id (generated when empty)")
	f.StringVar(&req.Encoding, "encoding", "", "Image format: webp, jpg or png")
	f.StringVar(&req.ServerEndpoint, "endpoint", "", "Upload endpoint (nothing is sent when empty)")
	f.StringVar(&req.UploadToken, "token", "", "Upload token header value")
	f.StringVar(&req.FormField, "field", "", "Multipart field name")
	f.StringVar(&req.DataType, "data-type", "", "dataType hint for textual payloads")
	f.StringVar(&req.Payload, "payload", "", "binary or text")
	f.StringVar(&req.URL, "page-url", "", "Page URL recorded with the request")
	return cmd
}

func newResizeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resize <width> <height>",
		Short: "Change the bridge viewport",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("width: %w", err)
			}
			height, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("height: %w", err)
			}
			if width <= 0 || height <= 0 {
				return errors.New("width and height must be positive")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			c, err := hostclient.Dial(ctx, opts.url)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.SendResize(width, height); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "viewport %dx%d\n", width, height)
			return nil
		},
	}
}

func newHealthCommand(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the bridge gRPC health service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return err
			}
			defer conn.Close()
			client := healthpb.NewHealthClient(conn)

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var resp *healthpb.HealthCheckResponse
			err = resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() error {
				var cerr error
				resp, cerr = client.Check(ctx, &healthpb.HealthCheckRequest{Service: health.Service})
				return cerr
			})
			if err != nil {
				return err
			}

			status := strings.ToLower(resp.GetStatus().String())
			fmt.Fprintln(cmd.OutOrStdout(), status)
			if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("bridge is %s", status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "grpc-addr", "localhost:50052", "Health server address")
	return cmd
}
