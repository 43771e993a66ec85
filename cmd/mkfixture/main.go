// mkfixture writes a synthetic charge sheet for local runs and demos.
// Each patient gets one or two visits; each visit has one to three service
// lines, and the first line of a visit may carry a patient payment.
// Usage: go run ./cmd/mkfixture --out testdata/charges.xlsx --patients 20
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/gyeh/chargeflow/internal/batch"
	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/sheet"
)

var (
	practices  = []string{"Acme Clinic", "Riverside Family Medicine"}
	providers  = []string{"Jane Doe MD", "John Smith DO", "Mary Major NP"}
	procedures = []string{"99213", "99214", "90791", "90837", "96127"}
	diagnoses  = []string{"Z00.00", "F41.1", "F32.9", "I10", "E11.9"}
	sources    = []string{"Cash", "Check", "Credit Card", "EFT"}
	modes      = []string{"Office", "Telehealth"}
)

func main() {
	out := flag.String("out", "testdata/charges.csv", "output sheet (.csv, .xlsx or .parquet)")
	patients := flag.Int("patients", 10, "number of patients")
	firstID := flag.Int("first-id", 1000, "first patient id")
	seed := flag.Int64("seed", 1, "random seed")
	checkOnly := flag.Bool("check", false, "only print stats for --out, don't write")
	flag.Parse()

	if *checkOnly {
		sh, err := sheet.Read(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read sheet: %v\n", err)
			os.Exit(1)
		}
		p := batch.MakePlan(sh.Rows)
		fmt.Printf("Rows: %d, payments: %d, groups: %d, missing keys: %d\n",
			p.Rows, p.PaymentRows, len(p.Groups), p.MissingKeys)
		return
	}

	rng := rand.New(rand.NewSource(*seed))
	headers := inputHeaders()
	var records [][]string
	base := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < *patients; i++ {
		pid := strconv.Itoa(*firstID + i)
		practice := practices[rng.Intn(len(practices))]
		provider := providers[rng.Intn(len(providers))]
		for v := 0; v < 1+rng.Intn(2); v++ {
			dos := base.AddDate(0, 0, rng.Intn(60)).Format("2006-01-02")
			mode := modes[rng.Intn(len(modes))]
			pos := "11"
			if mode == "Telehealth" {
				pos = "10"
			}
			for l := 0; l < 1+rng.Intn(3); l++ {
				cells := map[model.Field]string{
					model.FieldPatientID:         pid,
					model.FieldPractice:          practice,
					model.FieldDOS:               dos,
					model.FieldRenderingProvider: provider,
					model.FieldEncounterMode:     mode,
					model.FieldPOS:               pos,
					model.FieldProcedures:        procedures[rng.Intn(len(procedures))],
					model.FieldUnits:             "1",
					model.FieldDiag1:             diagnoses[rng.Intn(len(diagnoses))],
				}
				if l == 0 && rng.Intn(2) == 0 {
					cells[model.FieldPaymentBatch] = "PB-" + dos
					cells[model.FieldPatientPayment] = fmt.Sprintf("$%d.00", 10+rng.Intn(90))
					cells[model.FieldPaymentSource] = sources[rng.Intn(len(sources))]
				}
				rec := make([]string, len(headers))
				for j, h := range headers {
					rec[j] = cells[model.Field(h)]
				}
				records = append(records, rec)
			}
		}
	}

	sh, err := sheet.New(*out, headers, records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build sheet: %v\n", err)
		os.Exit(1)
	}
	if err := sh.Write(*out); err != nil {
		fmt.Fprintf(os.Stderr, "write sheet: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d rows for %d patients to %s\n", len(sh.Rows), *patients, *out)
}

func inputHeaders() []string {
	var out []string
	for _, fd := range model.AllFields {
		if !fd.Output {
			out = append(out, string(fd.Field))
		}
	}
	return out
}
