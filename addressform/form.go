package addressform

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

//go:embed form.gohtml
var templateFS embed.FS

var formTemplate = template.Must(template.ParseFS(templateFS, "form.gohtml"))

// Country describes one selectable country and its address rules.
type Country struct {
	// ID is the country code submitted as the form value (e.g. "US")
	ID string

	// Name is the display label
	Name string

	// PostcodePattern is the client-side validation pattern for postcodes,
	// published in the configuration blob. Empty means no pattern check.
	PostcodePattern string

	// PostcodeExample is a sample postcode shown by the client-side hint
	PostcodeExample string

	// PostcodeOptional marks countries where the postcode may be left empty
	PostcodeOptional bool

	// RegionRequired marks countries where a region must be chosen
	RegionRequired bool
}

// Address holds the current field values when re-rendering the form.
type Address struct {
	Street    []string
	RegionID  string
	Region    string
	City      string
	Postcode  string
	CountryID string
}

// FormConfig configures a Form.
type FormConfig struct {
	// Countries is the selectable country list, in display order
	Countries []Country

	// Regions supplies the region directory. Nil means no country gets a
	// region select.
	Regions RegionSource

	// StreetLines is the number of street inputs rendered (street[0] ..
	// street[n-1]). Values below 1 mean 2.
	StreetLines int

	// OptionalRegionAllowed lets countries without a region list leave the
	// region field empty
	OptionalRegionAllowed bool

	// IDPrefix namespaces the element ids of one form instance so several
	// forms can coexist on a page. Empty means "address".
	IDPrefix string
}

// Form renders the address-entry form and its client configuration blob.
type Form struct {
	cfg FormConfig
}

// NewForm creates a Form from a config.
func NewForm(cfg FormConfig) *Form {
	if cfg.StreetLines < 1 {
		cfg.StreetLines = 2
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "address"
	}
	return &Form{cfg: cfg}
}

// RegionListID returns the DOM id of the region select element. The same
// value is published as regionListId in the configuration blob.
func (f *Form) RegionListID() string {
	return f.cfg.IDPrefix + "-region-id"
}

// clientConfig is the JSON blob consumed by the client-side form behavior.
// Key names are a published contract.
type clientConfig struct {
	PostCodes                map[string]postcodeRule `json:"postCodes"`
	OptionalRegionAllowed    bool                    `json:"optionalRegionAllowed"`
	RegionListID             string                  `json:"regionListId"`
	RegionRequired           []string                `json:"regionRequired"`
	CountriesWithOptionalZip []string                `json:"countriesWithOptionalZip"`
	CurrentRegion            string                  `json:"currentRegion"`
}

type postcodeRule struct {
	Pattern string `json:"pattern"`
	Example string `json:"example,omitempty"`
}

// ClientConfig builds the JSON configuration blob for the given current
// address values.
func (f *Form) ClientConfig(addr Address) ([]byte, error) {
	cfg := clientConfig{
		PostCodes:                make(map[string]postcodeRule),
		OptionalRegionAllowed:    f.cfg.OptionalRegionAllowed,
		RegionListID:             f.RegionListID(),
		RegionRequired:           []string{},
		CountriesWithOptionalZip: []string{},
		CurrentRegion:            addr.RegionID,
	}

	for _, c := range f.cfg.Countries {
		if c.PostcodePattern != "" {
			cfg.PostCodes[c.ID] = postcodeRule{
				Pattern: c.PostcodePattern,
				Example: c.PostcodeExample,
			}
		}
		if c.RegionRequired {
			cfg.RegionRequired = append(cfg.RegionRequired, c.ID)
		}
		if c.PostcodeOptional {
			cfg.CountriesWithOptionalZip = append(cfg.CountriesWithOptionalZip, c.ID)
		}
	}

	return json.Marshal(cfg)
}

// streetField is one rendered street input
type streetField struct {
	Name  string
	ID    string
	Value string
}

// templateData is the data passed to the form template
type templateData struct {
	IDPrefix     string
	RegionListID string
	Streets      []streetField
	Countries    []Country
	Regions      []Region
	HasRegions   bool
	Address      Address
	ClientConfig template.JS
}

// Render writes the form HTML, including the embedded configuration blob,
// for the given current address values.
func (f *Form) Render(w io.Writer, addr Address) error {
	blob, err := f.ClientConfig(addr)
	if err != nil {
		return fmt.Errorf("build client config: %w", err)
	}

	streets := make([]streetField, f.cfg.StreetLines)
	for i := range streets {
		streets[i] = streetField{
			Name: fmt.Sprintf("street[%d]", i),
			ID:   fmt.Sprintf("%s-street-%d", f.cfg.IDPrefix, i),
		}
		if i < len(addr.Street) {
			streets[i].Value = addr.Street[i]
		}
	}

	var regions []Region
	if f.cfg.Regions != nil && addr.CountryID != "" {
		regions = f.cfg.Regions.RegionsByCountry(addr.CountryID)
	}

	data := templateData{
		IDPrefix:     f.cfg.IDPrefix,
		RegionListID: f.RegionListID(),
		Streets:      streets,
		Countries:    f.cfg.Countries,
		Regions:      regions,
		HasRegions:   len(regions) > 0,
		Address:      addr,
		ClientConfig: template.JS(blob),
	}

	return formTemplate.Execute(w, data)
}

// RenderHTML is a convenience wrapper returning the form as a string.
func (f *Form) RenderHTML(addr Address) (string, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf, addr); err != nil {
		return "", err
	}
	return buf.String(), nil
}
