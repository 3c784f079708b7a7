package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"roomhub/internal/models"

	"github.com/go-resty/resty/v2"
)

// DispatchCommand is one actuator instruction sent to a room controller.
type DispatchCommand struct {
	DeviceID string
	Command  models.Command
	Duration int // seconds, 0 = no auto shutoff
}

// ControllerClient talks HTTP to room controllers. It never retries.
type ControllerClient struct {
	http         *resty.Client
	dispatchPath string
	configPath   string
}

type ControllerClientConfig struct {
	DispatchPath string
	ConfigPath   string
	// Timeout caps any single request; callers usually pass a tighter context deadline.
	Timeout time.Duration
}

func NewControllerClient(cfg ControllerClientConfig) *ControllerClient {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &ControllerClient{
		http:         client,
		dispatchPath: cfg.DispatchPath,
		configPath:   cfg.ConfigPath,
	}
}

// baseURL prefixes http:// when the stored address carries no scheme.
func baseURL(address string) string {
	address = strings.TrimRight(strings.TrimSpace(address), "/")
	if strings.HasPrefix(address, "http://") || strings.HasPrefix(address, "https://") {
		return address
	}
	return "http://" + address
}

// SendCommand issues GET <address><dispatchPath>?device=&command=&duration=.
func (c *ControllerClient) SendCommand(ctx context.Context, address string, cmd DispatchCommand) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"device":   cmd.DeviceID,
			"command":  string(cmd.Command),
			"duration": strconv.Itoa(cmd.Duration),
		}).
		Get(baseURL(address) + c.dispatchPath)
	if err != nil {
		return fmt.Errorf("%w: command to %s: %v", ErrUpstreamUnavailable, address, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: command to %s: status %d", ErrUpstreamUnavailable, address, resp.StatusCode())
	}
	return nil
}

// PushConfig issues POST <address><configPath> with the room snapshot as JSON.
func (c *ControllerClient) PushConfig(ctx context.Context, address string, cfg models.RoomConfig) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(cfg).
		Post(baseURL(address) + c.configPath)
	if err != nil {
		return fmt.Errorf("%w: config push to %s: %v", ErrUpstreamUnavailable, address, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: config push to %s: status %d", ErrUpstreamUnavailable, address, resp.StatusCode())
	}
	return nil
}
