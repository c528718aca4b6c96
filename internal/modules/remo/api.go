// Package remo integrates Nature Remo climate control: an API client with
// short-lived state caches, and key applications for AC mode, temperature,
// fan volume and room temperature built on the runtime contracts.
package remo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

const defaultBaseURL = "https://api.nature.global"

// cacheMaxAge is how long a fetched room or AC state stays fresh.
const cacheMaxAge = time.Minute

// RoomState is a sensor snapshot from a Remo device.
type RoomState struct {
	Temperature float64
	Timestamp   time.Time
}

// ACState is the control state of an air conditioner appliance.
type ACState struct {
	Temperature     string
	TemperatureList []string
	Mode            string
	ModeList        []string
	Volume          string
	VolumeList      []string
	Power           bool
	Timestamp       time.Time
}

func (s ACState) asRequest() url.Values {
	button := "power-off"
	if s.Power {
		button = "power-on"
	}
	return url.Values{
		"air_direction":    {""},
		"air_direction_h":  {""},
		"air_volume":       {s.Volume},
		"button":           {button},
		"operation_mode":   {s.Mode},
		"temperature":      {s.Temperature},
		"temperature_unit": {"c"},
	}
}

// Client is a Nature Remo API client. It is constructed once at process
// start and shared by every key that talks to the service; the per-kind
// caches and their locks live inside it.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	roomMu    sync.Mutex
	roomCache map[string]RoomState

	acMu    sync.Mutex
	acCache map[string]ACState
}

// NewClient creates a client authenticating with the given token.
func NewClient(token string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		roomCache: map[string]RoomState{},
		acCache:   map[string]ACState{},
	}
}

func (c *Client) request(ctx context.Context, method, path string, body url.Values, out any) error {
	var reader *strings.Reader
	if body != nil {
		reader = strings.NewReader(body.Encode())
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error: %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

type deviceResponse struct {
	ID           string `json:"id"`
	NewestEvents struct {
		Temperature struct {
			Val float64 `json:"val"`
		} `json:"te"`
	} `json:"newest_events"`
}

type applianceResponse struct {
	ID       string `json:"id"`
	Settings struct {
		Temp   string `json:"temp"`
		Mode   string `json:"mode"`
		Vol    string `json:"vol"`
		Button string `json:"button"`
	} `json:"settings"`
	Aircon struct {
		Range struct {
			Modes map[string]struct {
				Temp []string `json:"temp"`
				Vol  []string `json:"vol"`
			} `json:"modes"`
		} `json:"range"`
	} `json:"aircon"`
}

// RoomState returns the sensor state of the device, from cache unless it is
// stale or force is set.
func (c *Client) RoomState(ctx context.Context, deviceID string, force bool) (RoomState, error) {
	c.roomMu.Lock()
	defer c.roomMu.Unlock()

	if state, ok := c.roomCache[deviceID]; ok && !force && time.Since(state.Timestamp) < cacheMaxAge {
		return state, nil
	}

	var devices []deviceResponse
	if err := c.request(ctx, "GET", "/1/devices", nil, &devices); err != nil {
		return RoomState{}, err
	}

	for _, device := range devices {
		if device.ID == deviceID {
			state := RoomState{
				Temperature: device.NewestEvents.Temperature.Val,
				Timestamp:   time.Now(),
			}
			c.roomCache[deviceID] = state
			return state, nil
		}
	}
	return RoomState{}, fmt.Errorf("device %s is not found", deviceID)
}

// ACState returns the control state of the appliance, from cache unless it
// is stale or force is set.
func (c *Client) ACState(ctx context.Context, applianceID string, force bool) (ACState, error) {
	c.acMu.Lock()
	defer c.acMu.Unlock()

	if state, ok := c.acCache[applianceID]; ok && !force && time.Since(state.Timestamp) < cacheMaxAge {
		return state, nil
	}

	var appliances []applianceResponse
	if err := c.request(ctx, "GET", "/1/appliances", nil, &appliances); err != nil {
		return ACState{}, err
	}

	for _, appliance := range appliances {
		if appliance.ID != applianceID {
			continue
		}

		mode := appliance.Settings.Mode
		modes := make([]string, 0, len(appliance.Aircon.Range.Modes))
		for name := range appliance.Aircon.Range.Modes {
			modes = append(modes, name)
		}
		sort.Strings(modes)

		state := ACState{
			Temperature:     appliance.Settings.Temp,
			TemperatureList: appliance.Aircon.Range.Modes[mode].Temp,
			Mode:            mode,
			ModeList:        modes,
			Volume:          appliance.Settings.Vol,
			VolumeList:      appliance.Aircon.Range.Modes[mode].Vol,
			Power:           appliance.Settings.Button != "power-off",
			Timestamp:       time.Now(),
		}
		c.acCache[applianceID] = state
		return state, nil
	}
	return ACState{}, fmt.Errorf("appliance %s is not found", applianceID)
}

// SetACState pushes the state to the appliance and refreshes the cache.
func (c *Client) SetACState(ctx context.Context, applianceID string, state ACState) error {
	path := fmt.Sprintf("/1/appliances/%s/aircon_settings", applianceID)
	if err := c.request(ctx, "POST", path, state.asRequest(), nil); err != nil {
		return err
	}

	state.Timestamp = time.Now()
	c.acMu.Lock()
	c.acCache[applianceID] = state
	c.acMu.Unlock()
	return nil
}
