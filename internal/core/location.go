package core

// Location is a stocking location. Exactly one location per
// deployment may have Default set; callers that don't care which
// location to use (e.g. the material-create shortcut) resolve it via
// LocationRepository.GetDefault.
type Location struct {
	ID      ID
	Code    string
	Name    string
	Default bool
}

// LocationRepository is intentionally tiny and lives in core (rather than
// its own package) since every component needs to resolve "the default
// location" without importing a heavier catalog/itemmaster package.
type LocationRepository interface {
	Create(loc Location) error
	Get(id ID) (Location, error)
	GetByCode(code string) (Location, error)
	GetDefault() (Location, error)
	List() ([]Location, error)
}
