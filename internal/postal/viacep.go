package postal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
)

// ViaCEPDirectory implements Directory against the ViaCEP public API.
type ViaCEPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewViaCEPDirectory creates a ViaCEP postal directory client.
// baseURL defaults to the public ViaCEP endpoint when empty.
func NewViaCEPDirectory(baseURL string, client *http.Client) *ViaCEPDirectory {
	if baseURL == "" {
		baseURL = "https://viacep.com.br"
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &ViaCEPDirectory{baseURL: baseURL, client: client}
}

// viaCEPResponse is the subset of the ViaCEP payload the client reads.
// ViaCEP signals an unknown code with {"erro": true} and HTTP 200.
type viaCEPResponse struct {
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

// Lookup resolves an 8-digit postal code to address data.
func (d *ViaCEPDirectory) Lookup(ctx context.Context, code string) (*Entry, error) {
	normalized := domain.NormalizePostalCode(code)
	if len(normalized) != PostalCodeLength {
		return nil, ErrInvalidCode
	}

	url := fmt.Sprintf("%s/ws/%s/json/", d.baseURL, normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build postal lookup request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, domain.Unavailable(err, "postal.lookup", "Postal directory unreachable")
	}
	defer resp.Body.Close()

	// ViaCEP answers 400 for malformed codes.
	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrInvalidCode
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.Errorf(domain.EUNAVAILABLE, "postal.lookup", "postal directory returned status %d", resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, domain.Internal(err, "postal.lookup", "failed to decode postal directory response")
	}

	if body.Erro {
		return nil, ErrNotFound
	}

	return &Entry{
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}, nil
}
