package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Country is the country of an invoice party. The zero value means unset.
type Country int

const (
	CountryUnset     Country = 0
	CountrySpain     Country = 1
	CountryMexico    Country = 2
	CountryArgentina Country = 3
	CountryColombia  Country = 4
	CountryChile     Country = 5
	CountryPeru      Country = 6
	CountryEcuador   Country = 7
	CountryVenezuela Country = 8
	CountryOther     Country = 9
)

var countryNames = [...]string{"", "España", "México", "Argentina", "Colombia", "Chile", "Perú", "Ecuador", "Venezuela", "Otro"}

// Countries lists the selectable countries in display order.
func Countries() []Country {
	return []Country{
		CountrySpain, CountryMexico, CountryArgentina, CountryColombia, CountryChile,
		CountryPeru, CountryEcuador, CountryVenezuela, CountryOther,
	}
}

func (c Country) String() string {
	if int(c) < 0 || int(c) >= len(countryNames) {
		return ""
	}
	return countryNames[c]
}

// IsValid reports whether c is one of the selectable countries.
func (c Country) IsValid() bool {
	return c > CountryUnset && int(c) < len(countryNames)
}

// ParseCountry maps a display name to a Country.
func ParseCountry(name string) (Country, error) {
	for i, n := range countryNames {
		if i > 0 && n == name {
			return Country(i), nil
		}
	}
	return CountryUnset, fmt.Errorf("unknown country %q", name)
}

func (c Country) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Country) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*c = Country(i)
		return nil
	}
	if str == "" {
		*c = CountryUnset
		return nil
	}
	parsed, err := ParseCountry(str)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Country) Value() (driver.Value, error) {
	return int64(c), nil
}

func (c *Country) Scan(value interface{}) error {
	if value == nil {
		*c = CountryUnset
		return nil
	}
	n, err := scanInt("Country", value)
	if err != nil {
		return err
	}
	*c = Country(n)
	return nil
}
