package scoring_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	model "github.com/arguswatch/argus/internal/domain/model"
	scoring "github.com/arguswatch/argus/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// Golden vectors pinned against the reference algorithm. Any change here
// breaks compatibility with previously issued tokens.
var goldenVectors = []struct {
	identifier string
	sanctions  int
	behavioral int
	reputation int
	finalScore int
	status     model.Status
}{
	{"0x742d35cc6634c0532925a3b844bc9e7595f0beb", 20, 22, 10, 19, model.StatusBlocked},
	{"", 0, 0, 0, 0, model.StatusBlocked},
	{"vitalik.eth", 84, 8, 50, 54, model.StatusWarning},
	{"0xdeadbeef", 15, 43, 53, 31, model.StatusWarning},
	{"satoshi", 7, 83, 27, 34, model.StatusWarning},
	{"0x0000000000000000000000000000000000000000", 42, 1, 81, 38, model.StatusWarning},
	{"0x00000000219ab540356cbb839cbe05303d7705fa", 3, 63, 26, 26, model.StatusBlocked},
}

func TestEngine_Score_GoldenVectors(t *testing.T) {
	Convey("Given the scoring engine", t, func() {
		engine := scoring.NewEngine()

		Convey("When scoring the pinned golden identifiers", func() {
			for _, v := range goldenVectors {
				result := engine.Score(v.identifier)

				Convey(fmt.Sprintf("Then %q should produce its recorded scores", v.identifier), func() {
					So(result.Address, ShouldEqual, v.identifier)
					So(result.Sanctions, ShouldEqual, v.sanctions)
					So(result.Behavioral, ShouldEqual, v.behavioral)
					So(result.Reputation, ShouldEqual, v.reputation)
					So(result.FinalScore, ShouldEqual, v.finalScore)
					So(result.Status, ShouldEqual, v.status)
				})
			}
		})

		Convey("When the accumulator exceeds 32 bits", func() {
			// "satoshi" diverges from the pinned 7/83/27 if the hash
			// accumulator is widened beyond int32.
			result := engine.Score("satoshi")

			Convey("Then wraparound must keep the pinned values", func() {
				So(result.Sanctions, ShouldEqual, 7)
				So(result.Behavioral, ShouldEqual, 83)
				So(result.Reputation, ShouldEqual, 27)
			})
		})

		Convey("When the identifier contains a surrogate pair", func() {
			// U+1F680 is two UTF-16 units; iterating runes instead
			// yields 69/90/69.
			result := engine.Score("ton🚀wallet")

			Convey("Then code-unit iteration must keep the pinned values", func() {
				So(result.Sanctions, ShouldEqual, 31)
				So(result.Behavioral, ShouldEqual, 46)
				So(result.Reputation, ShouldEqual, 65)
				So(result.FinalScore, ShouldEqual, 42)
				So(result.Status, ShouldEqual, model.StatusWarning)
			})
		})

		Convey("When the weighted sum lands exactly on .5", func() {
			// 0.5*42 + 0.3*1 + 0.2*81 = 37.5; half-away-from-zero gives 38.
			result := engine.Score("0x0000000000000000000000000000000000000000")

			Convey("Then rounding should go away from zero", func() {
				So(result.FinalScore, ShouldEqual, 38)
			})
		})
	})
}

func TestEngine_Score_Determinism(t *testing.T) {
	Convey("Given the scoring engine", t, func() {
		engine := scoring.NewEngine()

		Convey("When scoring the same identifier repeatedly", func() {
			first := engine.Score("0x742d35cc6634c0532925a3b844bc9e7595f0beb")

			Convey("Then every repetition should agree on all deterministic fields", func() {
				for i := 0; i < 50; i++ {
					again := engine.Score("0x742d35cc6634c0532925a3b844bc9e7595f0beb")
					So(again.Same(first), ShouldBeTrue)
				}
			})
		})

		Convey("When scoring concurrently", func() {
			reference := engine.Score("vitalik.eth")
			results := make(chan model.Result, 20)

			for i := 0; i < 20; i++ {
				go func() {
					results <- engine.Score("vitalik.eth")
				}()
			}

			Convey("Then all goroutines should observe identical scores", func() {
				for i := 0; i < 20; i++ {
					So((<-results).Same(reference), ShouldBeTrue)
				}
			})
		})

		Convey("When scoring through two independent engines", func() {
			other := scoring.NewEngine()

			Convey("Then both should agree", func() {
				So(other.Score("0xdeadbeef").Same(engine.Score("0xdeadbeef")), ShouldBeTrue)
			})
		})
	})
}

func TestEngine_Score_Normalization(t *testing.T) {
	Convey("Given the scoring engine", t, func() {
		engine := scoring.NewEngine()

		Convey("When scoring case and whitespace variants of one identifier", func() {
			base := engine.Score("0x742d35cc6634c0532925a3b844bc9e7595f0beb")
			variants := []string{
				"0X742D35CC6634C0532925A3B844BC9E7595F0BEB",
				"  0x742d35cc6634c0532925a3b844bc9e7595f0beb  ",
				"\t0x742D35cc6634c0532925a3b844bc9e7595f0beb\n",
			}

			Convey("Then all variants should collapse to the same result", func() {
				for _, v := range variants {
					result := engine.Score(v)
					So(result.Same(base), ShouldBeTrue)
					So(result.Address, ShouldEqual, "0x742d35cc6634c0532925a3b844bc9e7595f0beb")
				}
			})
		})

		Convey("When normalizing directly", func() {
			Convey("Then trim and lowercase should both apply", func() {
				So(scoring.Normalize("  ABC  "), ShouldEqual, "abc")
				So(scoring.Normalize("\tMixedCase\n"), ShouldEqual, "mixedcase")
				So(scoring.Normalize(""), ShouldEqual, "")
				So(scoring.Normalize("   "), ShouldEqual, "")
			})

			Convey("And normalization should be idempotent", func() {
				inputs := []string{"  0xAbC  ", "VITALIK.ETH", "plain"}
				for _, in := range inputs {
					once := scoring.Normalize(in)
					So(scoring.Normalize(once), ShouldEqual, once)
				}
			})
		})
	})
}

func TestEngine_Score_Ranges(t *testing.T) {
	Convey("Given the scoring engine", t, func() {
		engine := scoring.NewEngine()

		Convey("When scoring a spread of generated identifiers", func() {
			Convey("Then every sub-score and final score should stay in [0,100]", func() {
				for i := 0; i < 500; i++ {
					result := engine.Score(fmt.Sprintf("wallet-%d-%x", i, i*7919))

					So(result.Sanctions, ShouldBeBetweenOrEqual, 0, 100)
					So(result.Behavioral, ShouldBeBetweenOrEqual, 0, 100)
					So(result.Reputation, ShouldBeBetweenOrEqual, 0, 100)
					So(result.FinalScore, ShouldBeBetweenOrEqual, 0, 100)
					So(result.Status.Valid(), ShouldBeTrue)

					// Final score must be the rounded weighted sum of the
					// returned sub-scores.
					raw := 0.5*float64(result.Sanctions) +
						0.3*float64(result.Behavioral) +
						0.2*float64(result.Reputation)
					So(result.FinalScore, ShouldEqual, int(math.Round(raw)))
				}
			})
		})
	})
}

func TestStatusBoundaries(t *testing.T) {
	Convey("Given the status thresholds", t, func() {
		Convey("When classifying scores around the boundaries", func() {
			Convey("Then 29 is BLOCKED and 30 is WARNING", func() {
				So(scoring.StatusFor(29), ShouldEqual, model.StatusBlocked)
				So(scoring.StatusFor(30), ShouldEqual, model.StatusWarning)
			})

			Convey("And 69 is WARNING and 70 is APPROVED", func() {
				So(scoring.StatusFor(69), ShouldEqual, model.StatusWarning)
				So(scoring.StatusFor(70), ShouldEqual, model.StatusApproved)
			})

			Convey("And the extremes classify correctly", func() {
				So(scoring.StatusFor(0), ShouldEqual, model.StatusBlocked)
				So(scoring.StatusFor(100), ShouldEqual, model.StatusApproved)
			})
		})

		Convey("When scoring identifiers that land exactly on the boundaries", func() {
			engine := scoring.NewEngine()

			boundaries := []struct {
				identifier string
				finalScore int
				status     model.Status
			}{
				{"i", 29, model.StatusBlocked},
				{"j", 30, model.StatusWarning},
				{"ci", 69, model.StatusWarning},
				{"cj", 70, model.StatusApproved},
			}

			Convey("Then each boundary input should classify on the right side", func() {
				for _, b := range boundaries {
					result := engine.Score(b.identifier)
					So(result.FinalScore, ShouldEqual, b.finalScore)
					So(result.Status, ShouldEqual, b.status)
				}
			})
		})
	})
}

func TestEngine_Score_EmptyString(t *testing.T) {
	Convey("Given the scoring engine", t, func() {
		engine := scoring.NewEngine()

		Convey("When scoring the empty string", func() {
			result := engine.Score("")

			Convey("Then the result should be well defined", func() {
				So(result.Address, ShouldEqual, "")
				So(result.Sanctions, ShouldEqual, 0)
				So(result.Behavioral, ShouldEqual, 0)
				So(result.Reputation, ShouldEqual, 0)
				So(result.FinalScore, ShouldEqual, 0)
				So(result.Status, ShouldEqual, model.StatusBlocked)
			})

			Convey("And repeated calls should be stable", func() {
				for i := 0; i < 10; i++ {
					So(engine.Score("").Same(result), ShouldBeTrue)
				}
			})
		})

		Convey("When scoring pure whitespace", func() {
			Convey("Then it should normalize to the empty-string result", func() {
				So(engine.Score("   \t  ").Same(engine.Score("")), ShouldBeTrue)
			})
		})
	})
}

func TestEngine_Options(t *testing.T) {
	Convey("Given a scoring engine with a fixed clock", t, func() {
		fixed := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
		engine := scoring.NewEngine(scoring.WithClock(func() time.Time { return fixed }))

		Convey("When scoring", func() {
			result := engine.Score("0xdeadbeef")

			Convey("Then CreatedAt should come from the injected clock", func() {
				So(result.CreatedAt, ShouldEqual, fixed)
			})

			Convey("And the deterministic fields should be unaffected", func() {
				So(result.Same(scoring.NewEngine().Score("0xdeadbeef")), ShouldBeTrue)
			})
		})
	})

	Convey("Given a nil clock option", t, func() {
		engine := scoring.NewEngine(scoring.WithClock(nil))

		Convey("When scoring", func() {
			result := engine.Score("0xdeadbeef")

			Convey("Then the default clock should be used", func() {
				So(result.CreatedAt.IsZero(), ShouldBeFalse)
			})
		})
	})
}

func TestScore_PackageLevel(t *testing.T) {
	Convey("Given the package-level Score helper", t, func() {
		Convey("When scoring an identifier", func() {
			result := scoring.Score("vitalik.eth")

			Convey("Then it should match an explicit engine", func() {
				So(result.Same(scoring.NewEngine().Score("vitalik.eth")), ShouldBeTrue)
				So(result.CreatedAt.IsZero(), ShouldBeFalse)
			})
		})
	})
}
