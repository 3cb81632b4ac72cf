// Package pipeline orchestrates a full processing run: ingest the bank
// export, attribute income to properties, categorize expenses, reconcile
// manual overrides, recompute the review queues, and persist CSV snapshots
// plus the SQLite warehouse. A run either completes or fails before writing
// any output; per-row defects never abort it.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rentroll-dev/rentroll/internal/categorize"
	"github.com/rentroll-dev/rentroll/internal/category"
	"github.com/rentroll-dev/rentroll/internal/fuzzy"
	"github.com/rentroll-dev/rentroll/internal/ingest"
	"github.com/rentroll-dev/rentroll/internal/mapping"
	"github.com/rentroll-dev/rentroll/internal/model"
	"github.com/rentroll-dev/rentroll/internal/review"
	"github.com/rentroll-dev/rentroll/internal/rules"
)

// Input files searched for under <data>/raw when no explicit path is given.
var (
	inputCandidates   = []string{"transaction_report.csv", "bank_transactions.csv"}
	mappingCandidates = []string{"deposit_amount_map.csv", "deposit_mapping.csv"}
)

// Options select the input for one run.
type Options struct {
	InputFile   string // bank export path; empty searches <data>/raw
	MappingFile string // deposit mapping path; empty searches <data>/raw
	Year        int    // keep only transactions from this year; 0 keeps all
}

// Result reports what a run produced.
type Result struct {
	RunID          string
	MappingEnabled bool
	Transactions   int
	Income         int
	Expenses       int
	Unresolved     int
	IncomeReview   int
	ExpenseReview  int
	Validation     model.ValidationReport
}

// Processor runs the pipeline against one data directory.
type Processor struct {
	dataDir string
	log     *slog.Logger
	matcher *fuzzy.Matcher
}

// New creates a Processor rooted at dataDir. A nil logger selects the
// process default.
func New(dataDir string, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		dataDir: dataDir,
		log:     log,
		matcher: fuzzy.NewMatcher(0),
	}
}

func (p *Processor) rawDir() string       { return filepath.Join(p.dataDir, "raw") }
func (p *Processor) processedDir() string { return filepath.Join(p.dataDir, "processed") }
func (p *Processor) overridesDir() string { return filepath.Join(p.dataDir, "overrides") }

// RulesDBPath locates the rule store under the data directory.
func (p *Processor) RulesDBPath() string {
	return filepath.Join(p.overridesDir(), "rules.db")
}

// OverridesDBPath locates the override store under the data directory.
func (p *Processor) OverridesDBPath() string {
	return filepath.Join(p.overridesDir(), "overrides.db")
}

// WarehousePath locates processed.db under the data directory.
func (p *Processor) WarehousePath() string {
	return filepath.Join(p.processedDir(), "processed.db")
}

// EnsureDirs creates the data directory layout.
func (p *Processor) EnsureDirs() error {
	for _, dir := range []string{p.rawDir(), p.processedDir(), p.overridesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	return nil
}

// staticRules evaluates a preloaded rule set, avoiding a store query per row.
type staticRules []model.Rule

func (r staticRules) Evaluate(f rules.Fields) ([]model.Action, string, error) {
	actions, name := rules.EvaluateRules(r, f)
	return actions, name, nil
}

// Run executes one full pipeline pass.
func (p *Processor) Run(opts Options) (Result, error) {
	if err := p.EnsureDirs(); err != nil {
		return Result{}, err
	}

	inputPath, err := p.resolveInput(opts.InputFile)
	if err != nil {
		return Result{}, err
	}

	txns, err := ingest.ReadFile(inputPath)
	if err != nil {
		return Result{}, err
	}
	if opts.Year != 0 {
		txns = filterYear(txns, opts.Year)
	}
	p.log.Info("normalized bank transactions", "path", inputPath, "rows", len(txns), "year", opts.Year)

	validation := ingest.Validate(txns, opts.Year)
	for _, issue := range validation.Issues {
		if issue.Severity == model.SeverityWarning || issue.Severity == model.SeverityError {
			p.log.Warn("validation issue", "category", issue.Category, "message", issue.Message, "row", issue.RowNumber)
		}
	}

	mappingEntries, mappingEnabled, err := p.loadMapping(opts.MappingFile)
	if err != nil {
		return Result{}, err
	}
	if !mappingEnabled {
		p.log.Warn("deposit mapping file not found; income attribution disabled")
	}
	resolver := mapping.NewResolver(mappingEntries)

	ruleStore, err := rules.Open(p.RulesDBPath())
	if err != nil {
		return Result{}, err
	}
	defer ruleStore.Close()

	activeRules, err := ruleStore.List(true)
	if err != nil {
		return Result{}, err
	}
	evaluator := staticRules(activeRules)

	overrideStore, err := review.Open(p.OverridesDBPath())
	if err != nil {
		return Result{}, err
	}
	defer overrideStore.Close()

	warehouse, err := OpenWarehouse(p.WarehousePath())
	if err != nil {
		return Result{}, err
	}
	defer warehouse.Close()

	// Inputs and stores are good; start writing outputs.
	if err := writeTransactions(filepath.Join(p.processedDir(), fileNormalized), txns); err != nil {
		return Result{}, err
	}

	incomeTx, expenseTx, unresolved := ingest.Split(txns)

	unresolvedPath := filepath.Join(p.processedDir(), fileUnresolved)
	if len(unresolved) > 0 {
		if err := writeTransactions(unresolvedPath, unresolved); err != nil {
			return Result{}, err
		}
		p.log.Warn("unresolved bank transactions detected", "rows", len(unresolved))
	} else if err := removeIfExists(unresolvedPath); err != nil {
		return Result{}, err
	}

	incomes := resolver.Resolve(incomeTx)
	incomes = applyPropertyRules(incomes, evaluator)

	expenses, err := p.categorizeExpenses(expenseTx, evaluator)
	if err != nil {
		return Result{}, err
	}

	incomeOverrides, err := overrideStore.IncomeOverrides()
	if err != nil {
		return Result{}, err
	}
	expenseOverrides, err := overrideStore.ExpenseOverrides()
	if err != nil {
		return Result{}, err
	}
	incomes = review.MergeIncome(incomes, incomeOverrides)
	expenses = review.MergeExpenses(expenses, expenseOverrides)

	if err := writeIncome(filepath.Join(p.processedDir(), fileIncome), incomes); err != nil {
		return Result{}, err
	}
	if err := writeExpenses(filepath.Join(p.processedDir(), fileExpenses), expenses); err != nil {
		return Result{}, err
	}

	properties, err := warehouse.Properties()
	if err != nil {
		return Result{}, err
	}
	properties = mergeProperties(properties, resolver.Properties())

	incomeReview := p.incomeReviewQueue(incomes, properties)
	incomeReviewPath := filepath.Join(p.processedDir(), fileIncomeReview)
	if len(incomeReview) > 0 {
		if err := writeIncomeReview(incomeReviewPath, incomeReview); err != nil {
			return Result{}, err
		}
		p.log.Warn("income mapping review required", "rows", len(incomeReview))
	} else if err := removeIfExists(incomeReviewPath); err != nil {
		return Result{}, err
	}

	expenseReview := expenseReviewQueue(expenses)
	expenseReviewPath := filepath.Join(p.processedDir(), fileExpenseReview)
	if len(expenseReview) > 0 {
		if err := writeExpenses(expenseReviewPath, expenseReview); err != nil {
			return Result{}, err
		}
		p.log.Warn("expense category review required", "rows", len(expenseReview))
	} else if err := removeIfExists(expenseReviewPath); err != nil {
		return Result{}, err
	}

	runID := uuid.NewString()
	if err := warehouse.ReplaceProcessed(runID, incomes, expenses); err != nil {
		return Result{}, err
	}

	result := Result{
		RunID:          runID,
		MappingEnabled: mappingEnabled,
		Transactions:   len(txns),
		Income:         len(incomes),
		Expenses:       len(expenses),
		Unresolved:     len(unresolved),
		IncomeReview:   len(incomeReview),
		ExpenseReview:  len(expenseReview),
		Validation:     validation,
	}
	p.log.Info("processed financial datasets",
		"run_id", runID,
		"income_rows", result.Income,
		"expense_rows", result.Expenses,
		"unresolved_rows", result.Unresolved,
		"income_review_rows", result.IncomeReview,
		"expense_review_rows", result.ExpenseReview,
	)
	return result, nil
}

func (p *Processor) resolveInput(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("bank transaction report not found at %s", explicit)
		}
		return explicit, nil
	}
	for _, name := range inputCandidates {
		path := filepath.Join(p.rawDir(), name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("bank transaction report not found; place the export in %s or pass an explicit path", p.rawDir())
}

// loadMapping returns the deposit mapping entries, or (nil, false, nil) when
// no mapping file exists. A present but malformed file is fatal.
func (p *Processor) loadMapping(explicit string) ([]model.PropertyMapping, bool, error) {
	candidates := []string{explicit}
	if explicit == "" {
		candidates = candidates[:0]
		for _, name := range mappingCandidates {
			candidates = append(candidates, filepath.Join(p.rawDir(), name))
		}
	}

	for _, path := range candidates {
		entries, err := mapping.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		p.log.Info("loaded deposit mapping", "path", path, "entries", len(entries))
		return entries, true, nil
	}
	return nil, false, nil
}

func filterYear(txns []model.Transaction, year int) []model.Transaction {
	kept := txns[:0:0]
	for _, t := range txns {
		if t.Date.Year() == year {
			kept = append(kept, t)
		}
	}
	return kept
}

// applyPropertyRules fills unresolved income attributions from user rules.
// Rows the deposit mapping already resolved are never overwritten.
func applyPropertyRules(incomes []model.MappedIncome, evaluator staticRules) []model.MappedIncome {
	for i := range incomes {
		r := &incomes[i]
		if r.MappingStatus != model.StatusMappingMissing {
			continue
		}
		actions, name, _ := evaluator.Evaluate(rules.Fields{
			Description: r.Description,
			Memo:        r.Memo,
			Payee:       r.Payee,
			Amount:      r.Amount,
		})
		for _, a := range actions {
			if a.Type == model.ActionSetProperty {
				r.PropertyName = a.Value
				r.MappingStatus = model.StatusRuleApplied
				r.MappingNotes = fmt.Sprintf("Matched rule: %s", name)
				break
			}
		}
	}
	return incomes
}

func (p *Processor) categorizeExpenses(txns []model.Transaction, evaluator staticRules) ([]model.CategorizedExpense, error) {
	categorizer := categorize.New(evaluator)

	expenses := make([]model.CategorizedExpense, 0, len(txns))
	for _, t := range txns {
		match, err := categorizer.Categorize(t.Description, t.Amount, t.Payee, t.Memo)
		if err != nil {
			return nil, err
		}

		key, known := category.NormalizeKnown(match.Category)
		if !known {
			p.log.Warn("unknown expense category", "category", match.Category, "normalized", key, "transaction_id", t.ID)
		}

		e := model.CategorizedExpense{
			Transaction:    t,
			Category:       key,
			Confidence:     match.Confidence,
			MatchReason:    match.Reason,
			CategoryStatus: model.CategoryOriginal,
		}

		// Rules may also attribute an expense to a property.
		actions, _, _ := evaluator.Evaluate(rules.Fields{
			Description: t.Description,
			Memo:        t.Memo,
			Payee:       t.Payee,
			Amount:      t.Amount,
		})
		for _, a := range actions {
			if a.Type == model.ActionSetProperty {
				e.PropertyName = a.Value
				break
			}
		}

		expenses = append(expenses, e)
	}
	return expenses, nil
}

// incomeReviewQueue selects rows needing attribution review and attaches a
// fuzzy property suggestion where one clears the matcher threshold.
func (p *Processor) incomeReviewQueue(incomes []model.MappedIncome, properties []string) []model.MappedIncome {
	var queue []model.MappedIncome
	for _, r := range incomes {
		if !r.MappingStatus.NeedsReview() {
			continue
		}
		if name, score, ok := p.matcher.MatchProperty(r.Memo, properties); ok {
			r.SuggestedProperty = name
			r.SuggestedScore = score
		}
		queue = append(queue, r)
	}
	return queue
}

func expenseReviewQueue(expenses []model.CategorizedExpense) []model.CategorizedExpense {
	var queue []model.CategorizedExpense
	for _, e := range expenses {
		if e.NeedsReview() {
			queue = append(queue, e)
		}
	}
	return queue
}

func mergeProperties(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, name := range base {
		seen[name] = struct{}{}
	}
	merged := base
	for _, name := range extra {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			merged = append(merged, name)
		}
	}
	return merged
}
