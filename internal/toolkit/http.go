package toolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPCommander talks to the toolkit's control API over HTTP.
//
// Wire shape: POST {base}/calls/{ref}/{command} with an empty JSON body; the
// toolkit answers 200 with a CommandResult, or a non-2xx status for a
// transport-level failure. A 200 with accepted=false is a command rejection,
// not an error.
type HTTPCommander struct {
	base   string
	client *http.Client
}

var ErrUnreachable = errors.New("toolkit: unreachable")

func NewHTTPCommander(baseURL string, timeout time.Duration) (*HTTPCommander, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("toolkit: base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("toolkit: invalid base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPCommander{
		base:   baseURL,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPCommander) Name() string { return "http" }

func (c *HTTPCommander) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrUnreachable, resp.StatusCode)
	}
	return nil
}

func (c *HTTPCommander) Hold(ctx context.Context, callRef string) (CommandResult, error) {
	return c.invoke(ctx, callRef, CommandHold)
}

func (c *HTTPCommander) Resume(ctx context.Context, callRef string) (CommandResult, error) {
	return c.invoke(ctx, callRef, CommandResume)
}

func (c *HTTPCommander) Mute(ctx context.Context, callRef string) (CommandResult, error) {
	return c.invoke(ctx, callRef, CommandMute)
}

func (c *HTTPCommander) Unmute(ctx context.Context, callRef string) (CommandResult, error) {
	return c.invoke(ctx, callRef, CommandUnmute)
}

func (c *HTTPCommander) EndCall(ctx context.Context, callRef string) (CommandResult, error) {
	return c.invoke(ctx, callRef, CommandEndCall)
}

func (c *HTTPCommander) invoke(ctx context.Context, callRef, command string) (CommandResult, error) {
	if callRef == "" {
		return CommandResult{}, errors.New("toolkit: call ref is required")
	}

	u := fmt.Sprintf("%s/calls/%s/%s", c.base, url.PathEscape(callRef), command)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader([]byte("{}")))
	if err != nil {
		return CommandResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return CommandResult{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return CommandResult{}, fmt.Errorf("toolkit: command %s status %d", command, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return CommandResult{}, err
	}
	var out CommandResult
	if len(bytes.TrimSpace(body)) == 0 {
		// Empty 2xx body: accepted, confirmation arrives as an event.
		return CommandResult{Accepted: true, EventWillFollow: true}, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return CommandResult{}, fmt.Errorf("toolkit: command %s response: %w", command, err)
	}
	return out, nil
}
