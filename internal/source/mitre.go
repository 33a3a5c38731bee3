package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"Stratus/internal/normalize"
)

// MITREAttack downloads the enterprise-attack STIX bundle published on
// GitHub. The bundle is one large JSON document, so it is streamed to a
// temp file first and decoded from disk; each element of the objects array
// becomes one payload.
type MITREAttack struct {
	url    string
	client *http.Client
}

func NewMITREAttack(client *http.Client, url string) *MITREAttack {
	return &MITREAttack{url: url, client: client}
}

func (s *MITREAttack) Name() string { return "mitre-attack" }

func (s *MITREAttack) Fetch(ctx context.Context, unit string) ([]normalize.Payload, error) {
	path, err := s.downloadToTemp(ctx)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var bundle struct {
		Objects []map[string]any `json:"objects"`
	}
	if err := json.NewDecoder(f).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(bundle.Objects) == 0 {
		return nil, fmt.Errorf("%w: bundle has no objects", ErrMalformed)
	}

	out := make([]normalize.Payload, 0, len(bundle.Objects))
	for _, obj := range bundle.Objects {
		out = append(out, normalize.Payload(obj))
	}
	log.Printf(`{"msg":"bundle-decoded","unit":%q,"objects":%d}`, unit, len(out))
	return out, nil
}

func (s *MITREAttack) downloadToTemp(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if cerr := classifyStatus(resp.StatusCode); cerr != nil {
		return "", cerr
	}

	f, err := os.CreateTemp("", "bundle-*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
