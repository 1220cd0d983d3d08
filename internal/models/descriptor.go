package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// VariantOption is one {id, value} pair of a variant (e.g. color, size).
type VariantOption struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

// OptionSet is the canonical list form of variant options. The catalog
// sometimes returns options as a JSON object instead of a list; both decode
// into the same ordered list.
type OptionSet []VariantOption

func (o *OptionSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = OptionSet{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var list []VariantOption
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("failed to decode option list: %w", err)
		}
		*o = list
		return nil
	case '{':
		list, err := decodeOptionObject(trimmed)
		if err != nil {
			return err
		}
		*o = list
		return nil
	default:
		return fmt.Errorf("unsupported options value: %s", trimmed)
	}
}

func (o OptionSet) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]VariantOption(o))
}

func (o OptionSet) Values() []string {
	values := make([]string, len(o))
	for i, opt := range o {
		values[i] = opt.Value
	}
	return values
}

// decodeOptionObject walks the object token by token so entries keep their
// document order; ids are assigned 1..n in that order.
func decodeOptionObject(data []byte) (OptionSet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to decode option object: %w", err)
	}

	options := OptionSet{}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to decode option key: %w", err)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to decode option value: %w", err)
		}
		options = append(options, VariantOption{
			ID:    len(options) + 1,
			Value: stringify(value),
		})
	}
	return options, nil
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

// Angle is a rotation in whole degrees. The API rejects fractional angles,
// so floats are rounded on decode and the value always encodes as an integer.
type Angle int

func (a *Angle) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(strings.Trim(trimmed, `"`), 64)
	if err != nil {
		return fmt.Errorf("invalid angle %s: %w", trimmed, err)
	}
	*a = Angle(math.Round(f))
	return nil
}

func (a Angle) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(a))), nil
}

// PlaceholderImage is a design placed inside a placeholder. X and Y are
// fractional coordinates, Scale is a multiplier.
type PlaceholderImage struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	URL        string  `json:"url"`
	PreviewURL string  `json:"preview_url"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Scale      float64 `json:"scale"`
	Angle      Angle   `json:"angle"`
}

type Placeholder struct {
	Position string             `json:"position"`
	Images   []PlaceholderImage `json:"images"`
}

type PrintArea struct {
	VariantIDs   []int         `json:"variant_ids"`
	Placeholders []Placeholder `json:"placeholders"`
}

type Variant struct {
	ID        int       `json:"id"`
	Price     int       `json:"price"`
	IsEnabled bool      `json:"is_enabled"`
	IsDefault bool      `json:"is_default"`
	Grams     int       `json:"grams"`
	Options   OptionSet `json:"options"`
}

type SalesChannelProperty struct {
	SalesChannelID string                 `json:"sales_channel_id"`
	Properties     map[string]interface{} `json:"properties"`
}

// ProductDescriptor is the editable product document exchanged between the
// synthesizer, the uploader and product creation.
type ProductDescriptor struct {
	Title                  string                 `json:"title"`
	Description            string                 `json:"description"`
	BlueprintID            int                    `json:"blueprint_id"`
	PrintProviderID        int                    `json:"print_provider_id"`
	Variants               []Variant              `json:"variants"`
	PrintAreas             []PrintArea            `json:"print_areas"`
	SalesChannelProperties []SalesChannelProperty `json:"sales_channel_properties,omitempty"`

	// Informational fields written by template generation; never submitted.
	BlueprintTitle     string `json:"blueprint_title,omitempty"`
	PrintProviderTitle string `json:"print_provider_title,omitempty"`
	Brand              string `json:"brand,omitempty"`
	Model              string `json:"model,omitempty"`
}

// CreateProductRequest is the body submitted to product creation and update.
type CreateProductRequest struct {
	Title                  string                 `json:"title"`
	Description            string                 `json:"description"`
	BlueprintID            int                    `json:"blueprint_id"`
	PrintProviderID        int                    `json:"print_provider_id"`
	Variants               []Variant              `json:"variants"`
	PrintAreas             []PrintArea            `json:"print_areas"`
	SalesChannelProperties []SalesChannelProperty `json:"sales_channel_properties,omitempty"`
}

// Normalize materializes empty collections so nothing encodes as null.
func (d *ProductDescriptor) Normalize() {
	if d.Variants == nil {
		d.Variants = []Variant{}
	}
	for i := range d.Variants {
		if d.Variants[i].Options == nil {
			d.Variants[i].Options = OptionSet{}
		}
	}
	if d.PrintAreas == nil {
		d.PrintAreas = []PrintArea{}
	}
	for i := range d.PrintAreas {
		area := &d.PrintAreas[i]
		if area.VariantIDs == nil {
			area.VariantIDs = []int{}
		}
		if area.Placeholders == nil {
			area.Placeholders = []Placeholder{}
		}
		for j := range area.Placeholders {
			if area.Placeholders[j].Images == nil {
				area.Placeholders[j].Images = []PlaceholderImage{}
			}
		}
	}
	if len(d.SalesChannelProperties) == 0 {
		d.SalesChannelProperties = nil
	}
}

// ToCreateRequest returns the normalized submission body for the descriptor.
func (d *ProductDescriptor) ToCreateRequest() CreateProductRequest {
	d.Normalize()
	return CreateProductRequest{
		Title:                  d.Title,
		Description:            d.Description,
		BlueprintID:            d.BlueprintID,
		PrintProviderID:        d.PrintProviderID,
		Variants:               d.Variants,
		PrintAreas:             d.PrintAreas,
		SalesChannelProperties: d.SalesChannelProperties,
	}
}

// VariantIDs returns the declared variant ids in order.
func (d *ProductDescriptor) VariantIDs() []int {
	ids := make([]int, 0, len(d.Variants))
	for _, v := range d.Variants {
		ids = append(ids, v.ID)
	}
	return ids
}

// DefaultCount reports how many variants are flagged default.
func (d *ProductDescriptor) DefaultCount() int {
	n := 0
	for _, v := range d.Variants {
		if v.IsDefault {
			n++
		}
	}
	return n
}

// Images visits every placeholder image in print-area order.
func (d *ProductDescriptor) Images(fn func(img *PlaceholderImage)) {
	for i := range d.PrintAreas {
		for j := range d.PrintAreas[i].Placeholders {
			ph := &d.PrintAreas[i].Placeholders[j]
			for k := range ph.Images {
				fn(&ph.Images[k])
			}
		}
	}
}

// ValidationError collects every problem found in a descriptor.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid product descriptor: " + strings.Join(e.Problems, "; ")
}

// Validate checks required fields and that print areas only reference
// declared variants.
func (d *ProductDescriptor) Validate() error {
	var problems []string
	if strings.TrimSpace(d.Title) == "" {
		problems = append(problems, "title is required")
	}
	if d.BlueprintID <= 0 {
		problems = append(problems, "blueprint_id is required")
	}
	if d.PrintProviderID <= 0 {
		problems = append(problems, "print_provider_id is required")
	}
	if len(d.Variants) == 0 {
		problems = append(problems, "at least one variant is required")
	}
	if len(d.PrintAreas) == 0 {
		problems = append(problems, "at least one print area is required")
	}

	declared := make(map[int]bool, len(d.Variants))
	for _, v := range d.Variants {
		if declared[v.ID] {
			problems = append(problems, fmt.Sprintf("variant %d is declared more than once", v.ID))
		}
		declared[v.ID] = true
	}
	for i, area := range d.PrintAreas {
		for _, id := range area.VariantIDs {
			if !declared[id] {
				problems = append(problems, fmt.Sprintf("print_areas[%d] references unknown variant %d", i, id))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
