package menu_test

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/npavlov/go-luhn-service/internal/catalog"
	"github.com/npavlov/go-luhn-service/internal/luhn"
	"github.com/npavlov/go-luhn-service/internal/menu"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Validate(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)

	return args.Bool(0), args.Error(1)
}

func (m *MockService) Generate(ctx context.Context, length, count int) ([]string, error) {
	args := m.Called(ctx, length, count)

	//nolint:forcetypeassert
	return args.Get(0).([]string), args.Error(1)
}

func runMenu(t *testing.T, service menu.Service, input string) string {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)

	var out bytes.Buffer
	err = menu.NewMenu(strings.NewReader(input), &out, cat, service).Run(context.Background())
	require.NoError(t, err)

	return out.String()
}

func localService() menu.Service {
	return menu.NewLocalService(luhn.NewEngine(luhn.NewSource(3)))
}

func TestMenu_DisplaysCatalog(t *testing.T) {
	t.Parallel()

	out := runMenu(t, localService(), "q\n")

	assert.Contains(t, out, "LUHN GENERATOR TOOL")
	assert.Contains(t, out, "--- Financial ---")
	assert.Contains(t, out, "[1] Visa (16 digits)")
	assert.Contains(t, out, "[20] USPS Tracking (22 digits)")
	assert.Contains(t, out, "[V] Validate a Number")
	assert.Contains(t, out, "Exiting...")
}

func TestMenu_Generate(t *testing.T) {
	t.Parallel()

	out := runMenu(t, localService(), "9\n3\n\nq\n")

	assert.Contains(t, out, "How many IMEI numbers to generate? (default: 1): ")
	assert.Contains(t, out, "Generated 3 Valid IMEI Number(s):")

	lines := regexp.MustCompile(`(?m)^(\d)\. (\d+) \[PASS\]$`).FindAllStringSubmatch(out, -1)
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Len(t, line[2], 15)
		assert.True(t, luhn.IsValid(line[2]))
	}
}

func TestMenu_GenerateDefaultsCount(t *testing.T) {
	t.Parallel()

	for _, count := range []string{"", "abc", "0", "-2"} {
		service := new(MockService)
		service.On("Generate", mock.Anything, 13, 1).Return([]string{"4222222222222"}, nil).Once()
		service.On("Validate", mock.Anything, "4222222222222").Return(true, nil).Once()

		out := runMenu(t, service, "2\n"+count+"\n\nq\n")

		assert.Contains(t, out, "1. 4222222222222 [PASS]", "count %q", count)
		service.AssertExpectations(t)
	}
}

func TestMenu_Validate(t *testing.T) {
	t.Parallel()

	out := runMenu(t, localService(), "v\n4532015112830366\n\nV\n4532015112830367\n\nq\n")

	assert.Contains(t, out, "Number: 4532015112830366\nResult: VALID")
	assert.Contains(t, out, "Number: 4532015112830367\nResult: INVALID")
}

func TestMenu_CheckDigit(t *testing.T) {
	t.Parallel()

	out := runMenu(t, localService(), "c\n7992739871\n\nc\n12x\nq\n")

	assert.Contains(t, out, "Check digit: 3")
	assert.Contains(t, out, "Full number: 79927398713")
	assert.Contains(t, out, "Payload must contain digits only.")
}

func TestMenu_InvalidSelection(t *testing.T) {
	t.Parallel()

	out := runMenu(t, localService(), "42\nxyz\nq\n")

	assert.Equal(t, 2, strings.Count(out, "Invalid selection. Please try again."))
}

func TestMenu_EndOfInput(t *testing.T) {
	t.Parallel()

	out := runMenu(t, localService(), "1\n")

	assert.NotContains(t, out, "Exiting...")
}

func TestMenu_ServiceError(t *testing.T) {
	t.Parallel()

	service := new(MockService)
	service.On("Validate", mock.Anything, "123").Return(false, assert.AnError).Once()

	out := runMenu(t, service, "v\n123\nq\n")

	assert.Contains(t, out, "Error: "+assert.AnError.Error())
	service.AssertExpectations(t)
}
