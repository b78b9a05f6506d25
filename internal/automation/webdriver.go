package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// webElementKey is the W3C WebDriver element identifier key
const webElementKey = "element-6066-11e4-a52e-4f735466cecf"

// RemoteDriver drives a real browser through a W3C WebDriver endpoint
// such as a local chromedriver or geckodriver process.
type RemoteDriver struct {
	endpoint   string
	httpClient *http.Client
}

// NewRemoteDriver creates a driver talking to the given WebDriver
// endpoint, e.g. "http://localhost:9515".
func NewRemoteDriver(endpoint string) *RemoteDriver {
	return &RemoteDriver{
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
}

// OpenSession starts a new browser session
func (d *RemoteDriver) OpenSession(ctx context.Context, headless bool) (Session, error) {
	args := []string{"--disable-gpu"}
	if headless {
		args = append(args, "--headless=new")
	}

	body := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": map[string]any{
				"goog:chromeOptions": map[string]any{"args": args},
			},
		},
	}

	var resp struct {
		Value struct {
			SessionID string `json:"sessionId"`
		} `json:"value"`
	}
	if err := d.do(ctx, "POST", d.endpoint+"/session", body, &resp); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	if resp.Value.SessionID == "" {
		return nil, errors.New("creating session: empty session id")
	}

	return &remoteSession{
		driver: d,
		base:   d.endpoint + "/session/" + resp.Value.SessionID,
	}, nil
}

type remoteSession struct {
	driver *RemoteDriver
	base   string
}

func (s *remoteSession) Navigate(ctx context.Context, url string) error {
	return s.driver.do(ctx, "POST", s.base+"/url", map[string]string{"url": url}, nil)
}

func (s *remoteSession) Find(ctx context.Context, selector string) (Element, error) {
	body := map[string]string{"using": "css selector", "value": selector}

	var resp struct {
		Value map[string]string `json:"value"`
	}
	err := s.driver.do(ctx, "POST", s.base+"/element", body, &resp)
	if err != nil {
		var wdErr *wireError
		if errors.As(err, &wdErr) && wdErr.code == "no such element" {
			return nil, ErrElementNotFound
		}
		return nil, err
	}

	id := resp.Value[webElementKey]
	if id == "" {
		return nil, ErrElementNotFound
	}
	return &remoteElement{session: s, base: s.base + "/element/" + id}, nil
}

func (s *remoteSession) Close() error {
	// Session teardown is not tied to any request context
	return s.driver.do(context.Background(), "DELETE", s.base, nil, nil)
}

type remoteElement struct {
	session *remoteSession
	base    string
}

func (e *remoteElement) Click(ctx context.Context) error {
	return e.session.driver.do(ctx, "POST", e.base+"/click", map[string]any{}, nil)
}

func (e *remoteElement) TypeText(ctx context.Context, text string) error {
	return e.session.driver.do(ctx, "POST", e.base+"/value", map[string]string{"text": text}, nil)
}

func (e *remoteElement) ReadText(ctx context.Context) (string, error) {
	var resp struct {
		Value string `json:"value"`
	}
	if err := e.session.driver.do(ctx, "GET", e.base+"/text", nil, &resp); err != nil {
		return "", err
	}
	return resp.Value, nil
}

// wireError is a protocol-level error returned by the WebDriver endpoint
type wireError struct {
	code    string
	message string
}

func (e *wireError) Error() string {
	return fmt.Sprintf("webdriver: %s: %s", e.code, e.message)
}

// do issues one WebDriver request and decodes the response into out
func (d *RemoteDriver) do(ctx context.Context, method, url string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Value struct {
				Error   string `json:"error"`
				Message string `json:"message"`
			} `json:"value"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Value.Error != "" {
			return &wireError{code: errResp.Value.Error, message: errResp.Value.Message}
		}
		return fmt.Errorf("webdriver: HTTP %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
