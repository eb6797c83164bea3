package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/epavlova/macroledger/internal/api"
	"github.com/epavlova/macroledger/internal/models"
	"github.com/epavlova/macroledger/internal/recipes"
)

// Login attaches a session: user id plus the bearer token issued by the
// backend. Account creation and token issuance live server-side; the CLI
// only stores what it is given.
func (a *App) Login(ctx context.Context) error {
	userID, err := GetSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}
	token, err := GetSimpleText(a.reader, "Paste access token", os.Stdout)
	if err != nil {
		return err
	}

	a.session.SetUser(models.Profile{UserID: userID}, token)
	printlnFn("Logged in as", userID)
	return nil
}

// Logout drops the session; both stores clear through the bus.
func (a *App) Logout(ctx context.Context) error {
	a.session.Clear()
	printlnFn("Logged out")
	return nil
}

// SetDate switches the active ledger date: "date 2025-01-10", or "date"
// to show the current one.
func (a *App) SetDate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Active date:", a.nutrition.CurrentDate())
		return nil
	}
	if err := a.nutrition.SetCurrentDate(args[0]); err != nil {
		return err
	}
	printlnFn("Active date:", args[0])
	return nil
}

// Add prompts for a food entry and applies it to the active date.
func (a *App) Add(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Food name", os.Stdout)
	if err != nil {
		return err
	}
	quantity, err := GetSimpleText(a.reader, "Quantity (e.g. 1 medium, 200g)", os.Stdout)
	if err != nil {
		return err
	}
	macros, err := a.promptMacros()
	if err != nil {
		return err
	}

	entry, err := a.nutrition.AddEntry(ctx, a.nutrition.CurrentDate(), models.EntryInput{
		FoodName:     name,
		Quantity:     quantity,
		Calories:     models.Amount(macros.Calories),
		Protein:      models.Amount(macros.Protein),
		Carbs:        models.Amount(macros.Carbs),
		Fat:          models.Amount(macros.Fat),
		AnalysisType: models.AnalysisTypeText,
	})
	if err != nil {
		return err
	}
	printlnFn("Added", entry.FoodName, "as", entry.ID())
	return nil
}

// Remove deletes an entry by id: "rm <entry-id>".
func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: rm <entry-id>")
		return nil
	}
	if !a.nutrition.RemoveEntry(ctx, a.nutrition.CurrentDate(), args[0]) {
		printlnFn("No entry with id", args[0])
		return nil
	}
	printlnFn("Removed", args[0])
	return nil
}

// Edit patches an entry: "edit <entry-id>", then prompts per field. Empty
// answers keep the current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: edit <entry-id>")
		return nil
	}

	var patch models.EntryPatch
	if name, ok, err := GetOptionalText(a.reader, "Food name", os.Stdout); err != nil {
		return err
	} else if ok {
		patch.FoodName = &name
	}
	if qty, ok, err := GetOptionalText(a.reader, "Quantity", os.Stdout); err != nil {
		return err
	} else if ok {
		patch.Quantity = &qty
	}
	for _, f := range []struct {
		label string
		dst   **models.Amount
	}{
		{"Calories", &patch.Calories},
		{"Protein (g)", &patch.Protein},
		{"Carbs (g)", &patch.Carbs},
		{"Fat (g)", &patch.Fat},
	} {
		text, ok, err := GetOptionalText(a.reader, f.label, os.Stdout)
		if err != nil {
			return err
		}
		if ok {
			v := models.Amount(models.ParseAmount(text))
			*f.dst = &v
		}
	}

	if !a.nutrition.UpdateEntry(ctx, a.nutrition.CurrentDate(), args[0], patch) {
		printlnFn("No entry with id", args[0])
		return nil
	}
	printlnFn("Updated", args[0])
	return nil
}

// ShowDay prints the ledger for the given date (default: active date).
func (a *App) ShowDay(ctx context.Context, args []string) error {
	day := a.nutrition.CurrentDayNutrition()
	if len(args) > 0 {
		day = a.nutrition.Day(args[0])
		if day == nil {
			printlnFn("No data for", args[0])
			return nil
		}
	}

	state := "synced"
	if !day.Synced {
		state = "pending sync"
	}
	printlnFn(fmt.Sprintf("%s (%s)", day.Date, state))
	for _, e := range day.Entries {
		printlnFn(fmt.Sprintf("  %-10s %-20s %-12s %s", e.ID(), e.FoodName, e.Quantity, formatMacros(e.Macros)))
	}
	printlnFn("  total:", formatMacros(day.Totals))
	return nil
}

// Remaining prints goal minus consumed for the given date (default: active).
func (a *App) Remaining(ctx context.Context, args []string) error {
	date := ""
	if len(args) > 0 {
		date = args[0]
	}
	rem := a.nutrition.RemainingMacros(date)
	printlnFn("Remaining:", formatMacros(*rem))
	return nil
}

// Progress prints goal percentages for the given date (default: active).
func (a *App) Progress(ctx context.Context, args []string) error {
	date := ""
	if len(args) > 0 {
		date = args[0]
	}
	p := a.nutrition.ProgressPercentages(date)
	printlnFn(fmt.Sprintf("Progress: %.0f%% kcal / %.0f%% protein / %.0f%% carbs / %.0f%% fat",
		p.Calories, p.Protein, p.Carbs, p.Fat))
	return nil
}

// Recalc recomputes totals from entries and pushes immediately.
func (a *App) Recalc(ctx context.Context, args []string) error {
	date := a.nutrition.CurrentDate()
	if len(args) > 0 {
		date = args[0]
	}
	if err := a.nutrition.RecalculateAndPersist(ctx, date); err != nil {
		return err
	}
	printlnFn("Recalculated", date)
	return nil
}

// Sync pushes every dirty day right now.
func (a *App) Sync(ctx context.Context) error {
	if err := a.nutrition.SyncNow(ctx); err != nil {
		return err
	}
	if err := a.recipes.SyncNow(ctx); err != nil {
		return err
	}
	printlnFn("Sync complete")
	return nil
}

// History prints recent daily aggregates: "history [start end] [limit]".
func (a *App) History(ctx context.Context, args []string) error {
	q := api.HistoryQuery{Limit: 30}
	if len(args) >= 2 {
		q.StartDate, q.EndDate = args[0], args[1]
		args = args[2:]
	}
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			printlnFn("Usage: history [start end] [limit]")
			return nil
		}
		q.Limit = n
	}

	entries, err := a.nutrition.History(ctx, q)
	if err != nil {
		return err
	}
	if entries == nil {
		printlnFn("Log in to fetch history")
		return nil
	}
	for _, e := range entries {
		printlnFn(fmt.Sprintf("  %s  %s  (%d entries)", e.Date, formatMacros(e.Totals), e.EntryCount))
	}
	return nil
}

// Analytics prints the aggregate over a trailing window: "analytics [days]".
func (a *App) Analytics(ctx context.Context, args []string) error {
	days := 7
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			printlnFn("Usage: analytics [days]")
			return nil
		}
		days = n
	}

	an, err := a.nutrition.Analytics(ctx, days)
	if err != nil {
		return err
	}
	if an == nil {
		printlnFn("Log in to fetch analytics")
		return nil
	}
	printlnFn(fmt.Sprintf("Last %d days: %d tracked, %d entries, avg %s, %.0f%% within goal",
		an.Days, an.DaysTracked, an.TotalEntries, formatMacros(an.AverageMacros), an.GoalAdherence))
	return nil
}

// Recipes dispatches the recipe subcommands: list (default), add, rm.
func (a *App) Recipes(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		list, err := a.recipes.List(ctx)
		if err != nil {
			return err
		}
		for _, r := range list {
			state := ""
			if !r.Synced {
				state = " (pending sync)"
			}
			printlnFn(fmt.Sprintf("  %-10s %-20s %.0f servings, %s each%s",
				r.ID(), r.Name, r.Servings, formatMacros(r.PerServing), state))
		}
		return nil

	case "add":
		name, err := GetSimpleText(a.reader, "Recipe name", os.Stdout)
		if err != nil {
			return err
		}
		servings, err := GetSimpleText(a.reader, "Servings", os.Stdout)
		if err != nil {
			return err
		}
		macros, err := a.promptMacros()
		if err != nil {
			return err
		}
		r := a.recipes.Add(ctx, recipes.Input{
			Name:     name,
			Servings: models.Amount(models.ParseAmount(servings)),
			Calories: models.Amount(macros.Calories),
			Protein:  models.Amount(macros.Protein),
			Carbs:    models.Amount(macros.Carbs),
			Fat:      models.Amount(macros.Fat),
		})
		printlnFn("Added recipe", r.Name, "as", r.ID())
		return nil

	case "rm":
		if len(args) == 0 {
			printlnFn("Usage: recipes rm <id>")
			return nil
		}
		if !a.recipes.Delete(ctx, args[0]) {
			printlnFn("No recipe with id", args[0])
			return nil
		}
		printlnFn("Removed recipe", args[0])
		return nil

	default:
		printlnFn("Usage: recipes [list|add|rm]")
		return nil
	}
}

// promptMacros reads the four macro values. Free-form numeric text is
// coerced the same way API payloads are.
func (a *App) promptMacros() (models.Macros, error) {
	var m models.Macros
	for _, f := range []struct {
		label string
		dst   *float64
	}{
		{"Calories", &m.Calories},
		{"Protein (g)", &m.Protein},
		{"Carbs (g)", &m.Carbs},
		{"Fat (g)", &m.Fat},
	} {
		text, err := GetSimpleText(a.reader, f.label, os.Stdout)
		if err != nil {
			return models.Macros{}, err
		}
		*f.dst = models.ParseAmount(text)
	}
	return m, nil
}

func formatMacros(m models.Macros) string {
	return fmt.Sprintf("%.0f kcal / %.1fp / %.1fc / %.1ff", m.Calories, m.Protein, m.Carbs, m.Fat)
}
