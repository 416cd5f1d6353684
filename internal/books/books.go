package books

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Book describes one annual real estate tax book release.
type Book struct {
	Year         int     `yaml:"year" json:"year"`
	File         string  `yaml:"file" json:"file"`
	TaxRate      float64 `yaml:"tax_rate" json:"tax_rate"`
	Commissioner string  `yaml:"commissioner" json:"commissioner"`
}

// Path returns the full path of the book's PDF under the given directory.
func (b Book) Path(dir string) string {
	return filepath.Join(dir, b.File)
}

// Registry indexes tax books by year.
type Registry struct {
	byYear map[int]Book
	years  []int
}

// Builtin returns the registry of known Frederick County tax books.
func Builtin() *Registry {
	r, _ := NewRegistry([]Book{
		{Year: 2021, File: "Real Estate 2021 Tax Book.pdf", TaxRate: 0.61, Commissioner: "Seth T. Thatcher"},
		{Year: 2022, File: "Real Estate 2022 Tax Book.pdf", TaxRate: 0.61, Commissioner: "Seth T. Thatcher"},
		{Year: 2023, File: "RE 2023 Book.pdf", TaxRate: 0.51, Commissioner: "Seth T. Thatcher"},
		{Year: 2024, File: "RE_Book_2024.pdf", TaxRate: 0.51, Commissioner: "Tonya Sibert"},
		{Year: 2025, File: "RE_2025_Book.pdf", TaxRate: 0.48, Commissioner: "Tonya Sibert"},
	})
	return r
}

// NewRegistry validates and indexes a set of books.
func NewRegistry(list []Book) (*Registry, error) {
	r := &Registry{byYear: make(map[int]Book, len(list))}
	for _, b := range list {
		if b.Year <= 0 {
			return nil, eris.Errorf("books: invalid year %d", b.Year)
		}
		if b.File == "" {
			return nil, eris.Errorf("books: year %d has no file", b.Year)
		}
		if b.TaxRate <= 0 {
			return nil, eris.Errorf("books: year %d has invalid tax rate %v", b.Year, b.TaxRate)
		}
		if _, dup := r.byYear[b.Year]; dup {
			return nil, eris.Errorf("books: duplicate year %d", b.Year)
		}
		r.byYear[b.Year] = b
		r.years = append(r.years, b.Year)
	}
	sort.Ints(r.years)
	return r, nil
}

// LoadFile reads a book registry from a YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "books: read registry %s", path)
	}

	// The YAML has a top-level "books" key
	var wrapper struct {
		Books []Book `yaml:"books"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "books: parse registry")
	}
	if len(wrapper.Books) == 0 {
		return nil, eris.Errorf("books: registry %s has no books", path)
	}

	return NewRegistry(wrapper.Books)
}

// Get returns the book for a year.
func (r *Registry) Get(year int) (Book, error) {
	b, ok := r.byYear[year]
	if !ok {
		return Book{}, eris.Errorf("books: unknown year %d", year)
	}
	return b, nil
}

// Years returns all registered years in ascending order.
func (r *Registry) Years() []int {
	out := make([]int, len(r.years))
	copy(out, r.years)
	return out
}

// All returns all books in year order.
func (r *Registry) All() []Book {
	out := make([]Book, 0, len(r.years))
	for _, y := range r.years {
		out = append(out, r.byYear[y])
	}
	return out
}
