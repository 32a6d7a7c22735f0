package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/scansync/internal/scanner/models"
)

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetMeal prompts for a meal name. An empty answer defaults to snack.
func GetMeal(reader *bufio.Reader, w io.Writer) (models.MealType, error) {
	answer, err := GetSimpleText(reader, "Meal (breakfast/lunch/dinner/snack, default snack)", w)
	if err != nil {
		return "", err
	}
	return parseMeal(answer)
}

// GetServings prompts for a serving count. An empty answer defaults to 1.
func GetServings(reader *bufio.Reader, w io.Writer) (float64, error) {
	answer, err := GetSimpleText(reader, "Servings (default 1)", w)
	if err != nil {
		return 0, err
	}
	if answer == "" {
		return 1, nil
	}
	n, err := strconv.ParseFloat(answer, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("servings must be a positive number, got %q", answer)
	}
	return n, nil
}

func parseMeal(s string) (models.MealType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "snack":
		return models.MealSnack, nil
	case "breakfast":
		return models.MealBreakfast, nil
	case "lunch":
		return models.MealLunch, nil
	case "dinner":
		return models.MealDinner, nil
	default:
		return "", fmt.Errorf("unknown meal %q", s)
	}
}
