package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tapway/valuation-engine/internal/model"
	"github.com/tapway/valuation-engine/internal/valuation"
)

var valueCmd = &cobra.Command{
	Use:   "value [input.json]",
	Short: "Value a single company record",
	Long: `Value one company disclosure record and print the full result.

The input is a flat JSON object; numeric fields accept numbers or numeric
strings with thousands separators, boolean fields accept true/false or
"Yes"/"No". Pass "-" to read from stdin.

Examples:
  # Free-tier corridor from a minimal record
  value company.json --variant free

  # Standard valuation as formatted JSON
  value company.json --variant standard --format json

  # Enterprise valuation from stdin into a file
  cat company.json | value - --variant enterprise --output result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValue,
}

func init() {
	f := valueCmd.Flags()
	f.String("variant", "standard", "valuation variant: free, standard, or enterprise")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table or json")

	rootCmd.AddCommand(valueCmd)
}

func runValue(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	variantFlag, _ := cmd.Flags().GetString("variant")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")

	variant, err := model.ParseVariant(variantFlag)
	if err != nil {
		return err
	}
	if format != "table" && format != "json" {
		return eris.Errorf("value: --format must be table or json (got %q)", format)
	}

	in, err := readCompanyInput(args[0])
	if err != nil {
		return err
	}

	eng, cleanup, err := newEngine(ctx, cfg)
	defer cleanup()
	if err != nil {
		return err
	}

	res, err := eng.Valuate(variant, *in)
	if err != nil {
		return err
	}

	zap.L().Info("valuation finished",
		zap.String("company", res.CompanyName),
		zap.String("variant", string(variant)),
	)

	w, closeOut, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	switch format {
	case "json":
		return writeResultJSON(w, res)
	default:
		return writeResultTable(w, res)
	}
}

func readCompanyInput(path string) (*model.CompanyInput, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, eris.Wrap(err, "value: read stdin")
		}
	} else {
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "value: read input %s", path)
		}
	}

	var in model.CompanyInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, eris.Wrap(err, "value: parse input")
	}
	return &in, nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, func() {}, eris.Wrapf(err, "value: create output file %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeResultJSON(w io.Writer, res *model.ValuationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return eris.Wrap(err, "value: encode result")
	}
	return nil
}

func writeResultTable(w io.Writer, res *model.ValuationResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Company:   %s\n", res.CompanyName)
	fmt.Fprintf(&b, "Variant:   %s\n", res.Variant)
	if res.Sector != "" {
		fmt.Fprintf(&b, "Sector:    %s\n", res.Sector)
	}
	fmt.Fprintf(&b, "FX rate:   %.4f\n", res.CalcFXRate)

	if low, mid, high, ok := evCorridorK(res); ok {
		fmt.Fprintf(&b, "EV range:  %s / %s / %s (low / mid / high)\n",
			valuation.FormatThousandsEUR(low),
			valuation.FormatThousandsEUR(mid),
			valuation.FormatThousandsEUR(high))
	}

	fmt.Fprintln(&b, "\nScores:")
	writeScoreLine(&b, "Financial strength", res.FinancialStrength, res.Variant != model.VariantFree)
	writeScoreLine(&b, "Risk management", res.RiskManagement, res.Variant != model.VariantFree)
	writeScoreLine(&b, "Growth", res.GrowthScore, res.Variant == model.VariantStandard)
	writeScoreLine(&b, "Sector context", res.SectorContext, res.Variant == model.VariantStandard)
	writeScoreLine(&b, "Data completeness", res.DataCompleteness, res.Variant == model.VariantStandard)
	writeScoreLine(&b, "Market context", res.MarketContext, res.Variant == model.VariantEnterprise)
	writeScoreLine(&b, "Dealability", res.DealabilityScore, res.Variant != model.VariantFree)
	writeScoreLine(&b, "Reliability", res.ValuationReliability, res.Variant == model.VariantEnterprise)
	writeScoreLine(&b, "FX confidence", res.FXConfidence, res.Variant == model.VariantEnterprise)
	fmt.Fprintf(&b, "  %-22s %d / 100\n", compositeLabel(res.Variant), compositeScore(res))

	if res.RiskComment != "" {
		fmt.Fprintf(&b, "\nRisk:      %s\n", res.RiskComment)
	}
	if res.RiskFlags != "" {
		fmt.Fprintf(&b, "Flags:     %s\n", res.RiskFlags)
	}
	if res.PlausibilityCheck != "" {
		fmt.Fprintf(&b, "Check:     %s\n", res.PlausibilityCheck)
	}
	if res.AgeWarning != "" {
		fmt.Fprintf(&b, "Warning:   %s\n", res.AgeWarning)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(&b, "Anomaly:   %s\n", warn)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "value: write table")
	}
	return nil
}

func writeScoreLine(b *strings.Builder, label string, score int, present bool) {
	if !present {
		return
	}
	fmt.Fprintf(b, "  %-22s %d / 100\n", label, score)
}

// evCorridorK returns the EV corridor in thousands of EUR, converting the
// free tier's whole-EUR corridor for uniform display.
func evCorridorK(res *model.ValuationResult) (low, mid, high int64, ok bool) {
	if res.ValEVMidKEUR != nil {
		return *res.ValEVLowKEUR, *res.ValEVMidKEUR, *res.ValEVHighKEUR, true
	}
	if res.ValEVMid != nil {
		return *res.ValEVLow / 1000, *res.ValEVMid / 1000, *res.ValEVHigh / 1000, true
	}
	return 0, 0, 0, false
}

func compositeLabel(v model.Variant) string {
	switch v {
	case model.VariantFree:
		return "Acquisition score"
	case model.VariantEnterprise:
		return "Institutional score"
	default:
		return "Tapway score"
	}
}

func compositeScore(res *model.ValuationResult) int {
	switch res.Variant {
	case model.VariantFree:
		return res.AcquisitionScore
	case model.VariantEnterprise:
		return res.TapwayInstitutionalScore
	default:
		return res.TapwayScore
	}
}
