package addressform

// Region is one entry of the region directory used to populate the
// region select for countries that carry a predefined region list.
type Region struct {
	ID        string `json:"id"`
	CountryID string `json:"countryId"`
	Code      string `json:"code"`
	Name      string `json:"name"`
}

// RegionSource provides the region directory for the form.
type RegionSource interface {
	// RegionsByCountry returns the regions of a country, in display order.
	// An empty slice means the country has no predefined region list and
	// the form renders a free-text region input instead of a select.
	RegionsByCountry(countryID string) []Region
}

// StaticRegionSource is an in-memory RegionSource backed by a fixed list.
type StaticRegionSource struct {
	byCountry map[string][]Region
}

// NewStaticRegionSource builds a source from a flat region list.
func NewStaticRegionSource(regions []Region) *StaticRegionSource {
	byCountry := make(map[string][]Region)
	for _, r := range regions {
		byCountry[r.CountryID] = append(byCountry[r.CountryID], r)
	}
	return &StaticRegionSource{byCountry: byCountry}
}

// RegionsByCountry implements RegionSource
func (s *StaticRegionSource) RegionsByCountry(countryID string) []Region {
	return s.byCountry[countryID]
}
