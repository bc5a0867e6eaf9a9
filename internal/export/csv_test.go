package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bobboe/hspriveko/internal/core"
)

type fakeExpenses struct {
	list []core.Expense
	err  error
	got  string
}

func (f *fakeExpenses) ListByMonth(_ context.Context, m core.Month, categoryID string) ([]core.Expense, error) {
	f.got = m.String() + "/" + categoryID
	return f.list, f.err
}

type fakeCategories []core.Category

func (f fakeCategories) List(context.Context) ([]core.Category, error) { return f, nil }

func expense(id, cat, date string, cents int64, recurringID, note string) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{
		ID: id, CategoryID: cat, Date: d, Month: d.YearMonth(),
		Amount: core.Money{Cents: cents}, RecurringID: recurringID, Note: note,
		CreatedAt: time.Now(),
	}
}

func TestWriteMonth(t *testing.T) {
	expenses := &fakeExpenses{list: []core.Expense{
		expense("e3", "boende", "2024-03-25", 850000, "r1", "Hyra"),
		expense("e2", "mat", "2024-03-02", 12950, "", "ICA, storhandling"),
		expense("e1", "gone", "2024-03-01", 5, "", ""),
	}}
	cats := fakeCategories{{ID: "mat", Name: "Mat"}, {ID: "boende", Name: "Boende"}}

	var buf bytes.Buffer
	n, err := NewExporter(expenses, cats).WriteMonth(context.Background(), &buf, core.MustParseMonth("2024-03"), "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "2024-03/", expenses.got)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,month,category,amount,amount_cents,note,recurring,id", lines[0])
	assert.Equal(t, "2024-03-01,2024-03,gone,0.05,5,,false,e1", lines[1])
	assert.Equal(t, `2024-03-02,2024-03,Mat,129.50,12950,"ICA, storhandling",false,e2`, lines[2])
	assert.Equal(t, "2024-03-25,2024-03,Boende,8500.00,850000,Hyra,true,e3", lines[3])
}

func TestWriteMonthEmptyHasHeader(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewExporter(&fakeExpenses{}, fakeCategories{}).WriteMonth(context.Background(), &buf, core.MustParseMonth("2024-03"), "mat")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "date,month,category,amount,amount_cents,note,recurring,id\n", buf.String())
}

func TestWriteMonthListError(t *testing.T) {
	boom := errors.New("disk gone")
	var buf bytes.Buffer
	_, err := NewExporter(&fakeExpenses{err: boom}, fakeCategories{}).WriteMonth(context.Background(), &buf, core.MustParseMonth("2024-03"), "")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, buf.String())
}
