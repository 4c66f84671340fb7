package luhn_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npavlov/go-luhn-service/internal/luhn"
	testutils "github.com/npavlov/go-luhn-service/internal/test_utils"
)

func TestChecksum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		digits   string
		expected int
	}{
		{"0", 0},
		{"7", 7},
		{"18", 10}, // 1 doubled
		{"59", 10}, // 5 doubled to 10, folded to 1
		{"79927398713", 70},
		{"0079927398713", 70}, // leading zeros don't shift parity
	}

	for _, tt := range tests {
		t.Run(tt.digits, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, luhn.Checksum(tt.digits))
		})
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	validNumbers := []string{
		"0",
		"4532015112830366",
		"5632016887467943",
		"79927398713",
		"0000000000000000",
	}
	for _, number := range validNumbers {
		assert.True(t, luhn.IsValid(number), "Expected number %s to be valid", number)
	}

	invalidNumbers := []string{
		"",
		"12a4",
		"4532015112830367",
		"1234567890123456",
		" 4532015112830366",
		"4532-0151-1283-0366",
		"-0",
		"٣", // non-ASCII digit
	}
	for _, number := range invalidNumbers {
		assert.False(t, luhn.IsValid(number), "Expected number %q to be invalid", number)
	}
}

func TestIsValidMatchesChecksum(t *testing.T) {
	t.Parallel()

	src := luhn.NewSource(42)
	for i := 0; i < 500; i++ {
		length := 1 + src.IntN(24)
		var sb strings.Builder
		for j := 0; j < length; j++ {
			sb.WriteByte(byte('0' + src.IntN(10)))
		}
		digits := sb.String()

		assert.Equal(t, luhn.Checksum(digits)%10 == 0, luhn.IsValid(digits), digits)
	}
}

func TestCheckDigit(t *testing.T) {
	t.Parallel()

	digit, err := luhn.CheckDigit("7992739871")
	require.NoError(t, err)
	assert.Equal(t, byte('3'), digit)

	digit, err = luhn.CheckDigit("453201511283036")
	require.NoError(t, err)
	assert.Equal(t, byte('6'), digit)

	digit, err = luhn.CheckDigit("")
	require.NoError(t, err)
	assert.Equal(t, byte('0'), digit)

	_, err = luhn.CheckDigit("12x")
	require.ErrorIs(t, err, luhn.ErrInvalidArgument)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	src := luhn.DefaultSource()

	t.Run("Generated numbers have correct length and are valid", func(t *testing.T) {
		t.Parallel()

		for length := 1; length <= 32; length++ {
			number, err := luhn.Generate(src, length)
			require.NoError(t, err)
			assert.Len(t, number, length)
			assert.True(t, luhn.IsValid(number), "Generated number %s should be valid", number)
		}
	})

	t.Run("Length one is always zero", func(t *testing.T) {
		t.Parallel()

		for i := 0; i < 20; i++ {
			number, err := luhn.Generate(src, 1)
			require.NoError(t, err)
			assert.Equal(t, "0", number)
		}
	})

	t.Run("Randomness is exercised", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]struct{})
		for i := 0; i < 20; i++ {
			number, err := luhn.Generate(src, 16)
			require.NoError(t, err)
			seen[number] = struct{}{}
		}
		assert.Greater(t, len(seen), 1)
	})

	t.Run("Non-positive lengths are rejected", func(t *testing.T) {
		t.Parallel()

		for _, length := range []int{0, -1} {
			number, err := luhn.Generate(src, length)
			require.ErrorIs(t, err, luhn.ErrInvalidArgument)
			assert.Empty(t, number)
		}
	})

	t.Run("Payload comes from the source", func(t *testing.T) {
		t.Parallel()

		number, err := luhn.Generate(testutils.NewSequenceSource(7, 9, 9, 2, 7, 3, 9, 8, 7, 1), 11)
		require.NoError(t, err)
		assert.Equal(t, "79927398713", number)
	})
}

func TestSeededSourceIsReproducible(t *testing.T) {
	t.Parallel()

	first := luhn.NewEngine(luhn.NewSource(7))
	second := luhn.NewEngine(luhn.NewSource(7))

	for i := 0; i < 10; i++ {
		a, err := first.Generate(19)
		require.NoError(t, err)
		b, err := second.Generate(19)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.True(t, first.Validate(a))
	}
}

func TestEngineConcurrentUse(t *testing.T) {
	t.Parallel()

	engine := luhn.NewEngine(luhn.NewSource(1))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				number, err := engine.Generate(16)
				assert.NoError(t, err)
				assert.True(t, engine.Validate(number))
			}
		}()
	}
	wg.Wait()
}
