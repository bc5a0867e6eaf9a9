// Package seed loads a YAML file of categories and recurring templates and
// applies it through the validated services.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Bobboe/hspriveko/internal/core"
)

// File is the seed document.
//
//	categories:
//	  - name: Mat
//	    monthlyBudget: "4 000"
//	recurring:
//	  - name: Hyra
//	    amount: "8 500"
//	    category: Boende
//	    dayOfMonth: 25
//	    startMonth: "2024-01"
type File struct {
	Categories []CategorySeed  `yaml:"categories"`
	Recurring  []RecurringSeed `yaml:"recurring"`
}

type CategorySeed struct {
	Name          string `yaml:"name"`
	MonthlyBudget string `yaml:"monthlyBudget"`
}

// RecurringSeed references its category by name.
type RecurringSeed struct {
	Name       string `yaml:"name"`
	Amount     string `yaml:"amount"`
	Category   string `yaml:"category"`
	DayOfMonth int    `yaml:"dayOfMonth"`
	StartMonth string `yaml:"startMonth"`
	EndMonth   string `yaml:"endMonth,omitempty"`
	Active     *bool  `yaml:"active,omitempty"`
}

// Result counts what Apply created and skipped.
type Result struct {
	CategoriesCreated int
	RecurringCreated  int
	Skipped           int
}

type CategoryWriter interface {
	List(ctx context.Context) ([]core.Category, error)
	Add(ctx context.Context, in core.CategoryInput) (core.Category, error)
}

type RecurringWriter interface {
	List(ctx context.Context) ([]core.RecurringExpense, error)
	Add(ctx context.Context, in core.RecurringInput) (core.RecurringExpense, error)
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a seed document; unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return &file, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &file, nil
}

// Apply creates the categories and templates that do not exist yet.
// Categories match by name (case-insensitive); templates match by name and
// category. Running Apply twice creates nothing the second time.
func Apply(ctx context.Context, file *File, categories CategoryWriter, recurring RecurringWriter) (Result, error) {
	var res Result

	existing, err := categories.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list categories: %w", err)
	}
	byName := make(map[string]string, len(existing))
	for _, c := range existing {
		key := nameKey(c.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = c.ID
		}
	}

	for i, cs := range file.Categories {
		if _, ok := byName[nameKey(cs.Name)]; ok {
			res.Skipped++
			continue
		}
		budget, err := core.ParseMoneyToCents(cs.MonthlyBudget)
		if err != nil {
			return res, fmt.Errorf("category %d (%q): budget: %w", i+1, cs.Name, err)
		}
		c, err := categories.Add(ctx, core.CategoryInput{Name: cs.Name, MonthlyBudget: core.Money{Cents: budget}})
		if err != nil {
			return res, fmt.Errorf("category %d (%q): %w", i+1, cs.Name, err)
		}
		byName[nameKey(c.Name)] = c.ID
		res.CategoriesCreated++
	}

	if len(file.Recurring) == 0 {
		return res, nil
	}

	templates, err := recurring.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list recurring expenses: %w", err)
	}
	seen := make(map[[2]string]bool, len(templates))
	for _, r := range templates {
		seen[[2]string{nameKey(r.Name), r.CategoryID}] = true
	}

	for i, rs := range file.Recurring {
		catID, ok := byName[nameKey(rs.Category)]
		if !ok {
			return res, fmt.Errorf("recurring %d (%q): category %q: %w", i+1, rs.Name, rs.Category, core.ErrUnknownCategory)
		}
		key := [2]string{nameKey(rs.Name), catID}
		if seen[key] {
			res.Skipped++
			continue
		}
		amount, err := core.ParseMoneyToCents(rs.Amount)
		if err != nil {
			return res, fmt.Errorf("recurring %d (%q): amount: %w", i+1, rs.Name, err)
		}
		_, err = recurring.Add(ctx, core.RecurringInput{
			Name:       rs.Name,
			Amount:     core.Money{Cents: amount},
			CategoryID: catID,
			DayOfMonth: rs.DayOfMonth,
			StartMonth: rs.StartMonth,
			EndMonth:   rs.EndMonth,
			Active:     rs.Active,
		})
		if err != nil {
			return res, fmt.Errorf("recurring %d (%q): %w", i+1, rs.Name, err)
		}
		seen[key] = true
		res.RecurringCreated++
	}

	return res, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
