package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/RollCut/internal/model"
)

// ErrInvalidInput is returned when the header lines of an order file are
// missing or malformed.
var ErrInvalidInput = errors.New("invalid order file")

// InputData is the content of an order file: a free text description, the
// roll configuration and the order list.
type InputData struct {
	Description       string
	RollWidth         int
	OptimizationDepth int
	Orders            []model.Order
	Warnings          []string
}

// orderSeparator splits order lines on commas and/or whitespace.
var orderSeparator = regexp.MustCompile(`\s*,\s*|\s+`)

// ReadInput loads an order file (.in).
//
// Line 1 holds the description, line 2 the roll width and the optimization
// depth. Every following line is "width, height, id, description...";
// blank lines and lines starting with // are ignored. Lines that cannot be
// parsed are skipped with a warning.
func ReadInput(path string) (InputData, error) {
	f, err := os.Open(path)
	if err != nil {
		return InputData{}, fmt.Errorf("failed to open order file: %w", err)
	}
	defer f.Close()

	data, err := ParseInput(f)
	if err != nil {
		return InputData{}, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// ParseInput reads order file content from r. See ReadInput for the format.
func ParseInput(r io.Reader) (InputData, error) {
	var data InputData
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return data, fmt.Errorf("failed to read description: %w", err)
		}
		return data, fmt.Errorf("%w: missing description line", ErrInvalidInput)
	}
	data.Description = strings.TrimSpace(scanner.Text())

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return data, fmt.Errorf("failed to read roll configuration: %w", err)
		}
		return data, fmt.Errorf("%w: missing roll configuration line", ErrInvalidInput)
	}
	config := strings.Fields(scanner.Text())
	if len(config) < 2 {
		return data, fmt.Errorf("%w: expected roll width and optimization depth on line 2", ErrInvalidInput)
	}
	width, err := strconv.Atoi(config[0])
	if err != nil {
		return data, fmt.Errorf("%w: roll width %q: %v", ErrInvalidInput, config[0], err)
	}
	depth, err := strconv.Atoi(config[1])
	if err != nil {
		return data, fmt.Errorf("%w: optimization depth %q: %v", ErrInvalidInput, config[1], err)
	}
	data.RollWidth = width
	data.OptimizationDepth = depth

	seen := make(map[int]bool)
	lineNum := 2
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		order, warning := parseOrderLine(line, lineNum)
		if warning != "" {
			data.Warnings = append(data.Warnings, warning)
			continue
		}
		if seen[order.ID] {
			data.Warnings = append(data.Warnings, fmt.Sprintf("Line %d: duplicate order id %d, skipping", lineNum, order.ID))
			continue
		}
		seen[order.ID] = true
		data.Orders = append(data.Orders, order)
	}
	if err := scanner.Err(); err != nil {
		return data, fmt.Errorf("failed to read orders: %w", err)
	}

	return data, nil
}

// parseOrderLine parses "width, height, id, description...". On failure the
// returned warning is non-empty.
func parseOrderLine(line string, lineNum int) (model.Order, string) {
	parts := orderSeparator.Split(line, -1)
	if len(parts) < 4 {
		return model.Order{}, fmt.Sprintf("Line %d: not enough fields in %q, skipping", lineNum, line)
	}

	nums := make([]int, 3)
	for i, name := range []string{"width", "height", "id"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return model.Order{}, fmt.Sprintf("Line %d: invalid %s '%s', skipping", lineNum, name, parts[i])
		}
		nums[i] = n
	}
	if nums[0] <= 0 || nums[1] <= 0 {
		return model.Order{}, fmt.Sprintf("Line %d: width and height must be positive, skipping", lineNum)
	}

	desc := strings.TrimSpace(strings.Join(parts[3:], " "))
	return model.NewOrder(nums[2], nums[0], nums[1], desc), ""
}

// Settings returns plan settings built from the file's roll configuration on
// top of base.
func (d InputData) Settings(base model.PlanSettings) model.PlanSettings {
	base.RollWidth = d.RollWidth
	base.OptimizationDepth = d.OptimizationDepth
	return base
}
