package printify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"printkit/internal/models"
)

// FlexibleID accepts an id encoded either as a JSON string or a number.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", trimmed, err)
	}
	*f = FlexibleID(n.String())
	return nil
}

func (f FlexibleID) String() string {
	return string(f)
}

// Shop represents a Printify shop
type Shop struct {
	ID           FlexibleID `json:"id"`
	Title        string     `json:"title"`
	SalesChannel string     `json:"sales_channel"`
}

// Blueprint represents a catalog product type
type Blueprint struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Images      []string `json:"images"`
}

// Location is either a free-form string or a structured address; the
// catalog returns both shapes.
type Location struct {
	Text     string `json:"-"`
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	Region   string `json:"region,omitempty"`
	Zip      string `json:"zip,omitempty"`
}

type locationFields struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Region   string `json:"region"`
	Zip      string `json:"zip"`
}

func (l *Location) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*l = Location{}
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*l = Location{Text: s}
	case trimmed[0] == '{':
		var f locationFields
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return fmt.Errorf("failed to decode location: %w", err)
		}
		*l = Location{
			Address1: f.Address1,
			Address2: f.Address2,
			City:     f.City,
			Country:  f.Country,
			Region:   f.Region,
			Zip:      f.Zip,
		}
	default:
		return fmt.Errorf("unsupported location value: %s", trimmed)
	}
	return nil
}

func (l Location) MarshalJSON() ([]byte, error) {
	if l.IsStructured() {
		return json.Marshal(locationFields{
			Address1: l.Address1,
			Address2: l.Address2,
			City:     l.City,
			Country:  l.Country,
			Region:   l.Region,
			Zip:      l.Zip,
		})
	}
	return json.Marshal(l.Text)
}

// IsStructured reports whether the location came as an address object.
func (l Location) IsStructured() bool {
	return l.Text == "" && (l.Country != "" || l.City != "" || l.Region != "" || l.Address1 != "")
}

func (l Location) String() string {
	if !l.IsStructured() {
		return l.Text
	}
	var parts []string
	for _, p := range []string{l.City, l.Region, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// PrintProvider represents a fulfillment partner
type PrintProvider struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Location Location `json:"location"`
}

// VariantPlaceholder is a print position advertised by a catalog variant.
type VariantPlaceholder struct {
	Position string  `json:"position"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// CatalogVariant is a variant as listed for a blueprint/provider pair.
type CatalogVariant struct {
	ID                int                  `json:"id"`
	Title             string               `json:"title"`
	Options           models.OptionSet     `json:"options"`
	Placeholders      []VariantPlaceholder `json:"placeholders"`
	DecorationMethods []string             `json:"decoration_methods"`
}

// VariantList decodes both shapes of the variants endpoint: a bare list or
// an object wrapping the list under "variants".
type VariantList []CatalogVariant

func (v *VariantList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = VariantList{}
		return nil
	}

	var list []CatalogVariant
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("failed to decode variant list: %w", err)
		}
	case '{':
		var wrapped struct {
			Variants []CatalogVariant `json:"variants"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return fmt.Errorf("failed to decode variants object: %w", err)
		}
		list = wrapped.Variants
	default:
		return fmt.Errorf("unsupported variants response: %.40s", trimmed)
	}

	if list == nil {
		list = []CatalogVariant{}
	}
	*v = list
	return nil
}

// ProductImage is a mockup image generated by the remote service.
type ProductImage struct {
	Src        string `json:"src"`
	VariantIDs []int  `json:"variant_ids"`
	Position   string `json:"position"`
	IsDefault  bool   `json:"is_default"`
}

// Product is a product as confirmed by the remote service.
type Product struct {
	ID                     string                        `json:"id"`
	Title                  string                        `json:"title"`
	Description            string                        `json:"description"`
	Tags                   []string                      `json:"tags"`
	BlueprintID            int                           `json:"blueprint_id"`
	PrintProviderID        int                           `json:"print_provider_id"`
	ShopID                 FlexibleID                    `json:"shop_id"`
	Variants               []models.Variant              `json:"variants"`
	PrintAreas             []models.PrintArea            `json:"print_areas"`
	Images                 []ProductImage                `json:"images"`
	SalesChannelProperties []models.SalesChannelProperty `json:"sales_channel_properties"`
	Visible                bool                          `json:"visible"`
	IsLocked               bool                          `json:"is_locked"`
	CreatedAt              string                        `json:"created_at"`
	UpdatedAt              string                        `json:"updated_at"`
}

// productPage decodes the product listing, which is either a bare list or
// the paginated {"data": [...]} envelope.
type productPage []Product

func (p *productPage) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data []Product `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return err
		}
		*p = envelope.Data
		return nil
	}
	var list []Product
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return err
	}
	*p = list
	return nil
}

// ImageAsset is an uploaded image in the media library.
type ImageAsset struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	Height     int    `json:"height"`
	Width      int    `json:"width"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type"`
	URL        string `json:"url"`
	PreviewURL string `json:"preview_url"`
	UploadTime string `json:"upload_time"`
}

// CanonicalURL is the asset URL, falling back to the preview URL.
func (a *ImageAsset) CanonicalURL() string {
	if a.URL != "" {
		return a.URL
	}
	return a.PreviewURL
}

// uploadRequest is the body of the image upload endpoint; exactly one of
// Contents or URL is set.
type uploadRequest struct {
	FileName string `json:"file_name"`
	Contents string `json:"contents,omitempty"`
	URL      string `json:"url,omitempty"`
}

type publishRequest struct {
	SalesChannelID string `json:"sales_channel_id,omitempty"`
	Title          bool   `json:"title"`
	Description    bool   `json:"description"`
	Images         bool   `json:"images"`
	Variants       bool   `json:"variants"`
	Tags           bool   `json:"tags"`
}
