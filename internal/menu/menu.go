// Package menu implements the interactive text menu of the luhn CLI.
package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/npavlov/go-luhn-service/internal/catalog"
	"github.com/npavlov/go-luhn-service/internal/luhn"
)

const width = 40

// Service performs the engine calls, locally or against a remote server.
type Service interface {
	Validate(ctx context.Context, number string) (bool, error)
	Generate(ctx context.Context, length, count int) ([]string, error)
}

type styles struct {
	title  lipgloss.Style
	group  lipgloss.Style
	key    lipgloss.Style
	hint   lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	errorS lipgloss.Style
}

type Menu struct {
	in      *bufio.Scanner
	out     io.Writer
	catalog *catalog.Catalog
	service Service
	styles  styles
}

func NewMenu(in io.Reader, out io.Writer, cat *catalog.Catalog, service Service) *Menu {
	renderer := lipgloss.NewRenderer(out)

	return &Menu{
		in:      bufio.NewScanner(in),
		out:     out,
		catalog: cat,
		service: service,
		styles: styles{
			title:  renderer.NewStyle().Bold(true).Width(width).Align(lipgloss.Center),
			group:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
			key:    renderer.NewStyle().Foreground(lipgloss.Color("214")),
			hint:   renderer.NewStyle().Foreground(lipgloss.Color("242")).Italic(true),
			pass:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
			fail:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
			errorS: renderer.NewStyle().Foreground(lipgloss.Color("196")),
		},
	}
}

// Run shows the menu until the operator quits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "menu interrupted")
		}

		m.display()

		choice, ok := m.prompt("\nSelect an option: ")
		if !ok {
			return m.in.Err()
		}

		var err error
		switch strings.ToLower(choice) {
		case "q":
			m.println("Exiting...")

			return nil
		case "v":
			err = m.validate(ctx)
		case "c":
			m.complete()
		default:
			err = m.generate(ctx, choice)
		}

		if err != nil {
			m.println(m.styles.errorS.Render("Error: " + err.Error()))
		}
	}
}

func (m *Menu) display() {
	rule := strings.Repeat("=", width)

	m.println("\n" + rule)
	m.println(m.styles.title.Render("LUHN GENERATOR TOOL"))
	m.println(rule)

	for _, group := range m.catalog.Groups() {
		m.println("\n" + m.styles.group.Render("--- "+group+" ---"))
		for _, category := range m.catalog.InGroup(group) {
			m.println(fmt.Sprintf("%s %s (%d digits)",
				m.styles.key.Render(fmt.Sprintf("[%d]", category.Selector)), category.Name, category.Length))
		}
	}

	m.println("\n" + m.styles.key.Render("[V]") + " Validate a Number")
	m.println(m.styles.key.Render("[C]") + " Complete a Payload with its Check Digit")
	m.println(m.styles.key.Render("[Q]") + " Quit")
}

func (m *Menu) validate(ctx context.Context) error {
	number, ok := m.prompt("\nEnter number to validate: ")
	if !ok {
		return nil
	}

	valid, err := m.service.Validate(ctx, number)
	if err != nil {
		return err
	}

	result := m.styles.fail.Render("INVALID")
	if valid {
		result = m.styles.pass.Render("VALID")
	}

	m.section(func() {
		m.println("Number: " + number)
		m.println("Result: " + result)
	})
	m.pause()

	return nil
}

func (m *Menu) complete() {
	payload, ok := m.prompt("\nEnter payload digits: ")
	if !ok {
		return
	}

	digit, err := luhn.CheckDigit(payload)
	if err != nil {
		m.println(m.styles.errorS.Render("Payload must contain digits only."))

		return
	}

	m.section(func() {
		m.println(fmt.Sprintf("Check digit: %c", digit))
		m.println("Full number: " + payload + string(digit))
	})
	m.pause()
}

func (m *Menu) generate(ctx context.Context, choice string) error {
	selector, err := strconv.Atoi(choice)
	category, found := m.catalog.BySelector(selector)
	if err != nil || !found {
		m.println(m.styles.errorS.Render("Invalid selection. Please try again."))

		return nil
	}

	rawCount, ok := m.prompt(fmt.Sprintf("\nHow many %s numbers to generate? (default: 1): ", category.Name))
	if !ok {
		return nil
	}

	count, err := strconv.Atoi(rawCount)
	if err != nil || count <= 0 {
		count = 1
	}

	numbers, err := m.service.Generate(ctx, category.Length, count)
	if err != nil {
		return err
	}

	m.println("\n" + strings.Repeat("-", width))
	m.println(fmt.Sprintf("Generated %d Valid %s Number(s):", len(numbers), category.Name))

	m.section(func() {
		for i, number := range numbers {
			status := m.styles.fail.Render("FAIL")
			if valid, err := m.service.Validate(ctx, number); err == nil && valid {
				status = m.styles.pass.Render("PASS")
			}
			m.println(fmt.Sprintf("%d. %s [%s]", i+1, number, status))
		}
	})
	m.pause()

	return nil
}

func (m *Menu) section(body func()) {
	rule := strings.Repeat("-", width)

	m.println(rule)
	body()
	m.println(rule)
}

func (m *Menu) pause() {
	m.prompt(m.styles.hint.Render("Press Enter to continue..."))
}

// prompt prints label and reads one trimmed line. ok is false at end of input.
func (m *Menu) prompt(label string) (string, bool) {
	_, _ = fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}

	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) println(line string) {
	_, _ = fmt.Fprintln(m.out, line)
}
