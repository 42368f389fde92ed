package payment

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mkirsanov/access_bot/internal/model"
	"github.com/mkirsanov/access_bot/internal/recognition"
)

var _ = Describe("Validate", func() {
	var (
		analysis *recognition.Analysis
		expected Expectation
		result   Result
	)

	rubExpectation := Expectation{
		Currency:   model.CurrencyRUB,
		Amount:     2000,
		CardNumber: "2202200312345678",
	}
	uahExpectation := Expectation{
		Currency:   model.CurrencyUAH,
		Amount:     1050,
		CardNumber: "5169155124283993",
	}

	JustBeforeEach(func() {
		result = Validate(analysis, expected)
	})

	When("the receipt matches the RUB expectation", func() {
		BeforeEach(func() {
			expected = rubExpectation
			analysis = &recognition.Analysis{
				Readable:   true,
				Amount:     2000,
				CardDigits: "5678",
				Confidence: 90,
			}
		})

		It("should accept", func() {
			Expect(result.Verdict).To(Equal(VerdictAccepted))
		})

		It("should not carry a reason", func() {
			Expect(result.Reason).To(BeEmpty())
		})

		It("should be a pure function", func() {
			Expect(Validate(analysis, expected)).To(Equal(result))
		})
	})

	When("the receipt matches the UAH expectation", func() {
		BeforeEach(func() {
			expected = uahExpectation
			analysis = &recognition.Analysis{
				Readable:   true,
				Amount:     1050,
				CardDigits: "3993",
				Confidence: 85,
			}
		})

		It("should accept", func() {
			Expect(result.Verdict).To(Equal(VerdictAccepted))
		})
	})

	When("the model extracted a full card number", func() {
		BeforeEach(func() {
			expected = rubExpectation
			analysis = &recognition.Analysis{
				Readable:   true,
				Amount:     2000,
				CardDigits: "2202 2003 1234 5678",
			}
		})

		It("should compare only the last four digits", func() {
			Expect(result.Verdict).To(Equal(VerdictAccepted))
		})
	})

	When("nothing could be extracted from the image", func() {
		BeforeEach(func() {
			expected = rubExpectation
			analysis = &recognition.Analysis{Readable: true}
		})

		It("should reject as unreadable", func() {
			Expect(result.Verdict).To(Equal(VerdictRejected))
			Expect(result.Reason).To(ContainSubstring("Не удалось распознать квитанцию"))
		})
	})

	When("the image is not a receipt", func() {
		BeforeEach(func() {
			expected = uahExpectation
			analysis = &recognition.Analysis{
				Readable:    false,
				Description: "фотография кота",
			}
		})

		It("should reject with the model's description", func() {
			Expect(result.Verdict).To(Equal(VerdictRejected))
			Expect(result.Reason).To(ContainSubstring("не платежная квитанция"))
			Expect(result.Reason).To(ContainSubstring("фотография кота"))
		})
	})

	When("the analysis is absent entirely", func() {
		BeforeEach(func() {
			expected = rubExpectation
			analysis = nil
		})

		It("should reject as unreadable", func() {
			Expect(result.Verdict).To(Equal(VerdictRejected))
		})
	})

	When("the amount is zero but the card was extracted", func() {
		BeforeEach(func() {
			expected = rubExpectation
			analysis = &recognition.Analysis{
				Readable:   true,
				Amount:     0,
				CardDigits: "5678",
			}
		})

		It("should reject as an unrecognized amount, not a numeric mismatch", func() {
			Expect(result.Verdict).To(Equal(VerdictRejected))
			Expect(result.Reason).To(ContainSubstring("Не удалось распознать сумму"))
			Expect(result.Reason).NotTo(ContainSubstring("Найдено на квитанции: 0"))
		})
	})

	When("the amount does not match for UAH", func() {
		BeforeEach(func() {
			expected = uahExpectation
			analysis = &recognition.Analysis{
				Readable:   true,
				Amount:     900,
				CardDigits: "3993",
			}
		})

		It("should reject", func() {
			Expect(result.Verdict).To(Equal(VerdictRejected))
		})

		It("should embed both amounts with the hryvnia symbol", func() {
			Expect(result.Reason).To(ContainSubstring("1050 ₴"))
			Expect(result.Reason).To(ContainSubstring("900 ₴"))
			Expect(result.Reason).NotTo(ContainSubstring("₽"))
		})
	})

	When("the amount does not match for RUB", func() {
		BeforeEach(func() {
			expected = rubExpectation
			analysis = &recognition.Analysis{
				Readable:   true,
				Amount:     1500,
				CardDigits: "5678",
			}
		})

		It("should embed both amounts with the ruble symbol", func() {
			Expect(result.Verdict).To(Equal(VerdictRejected))
			Expect(result.Reason).To(ContainSubstring("2000 ₽"))
			Expect(result.Reason).To(ContainSubstring("1500 ₽"))
		})
	})

	When("the amount is off by one", func() {
		BeforeEach(func() {
			expected = rubExpectation
			analysis = &recognition.Analysis{
				Readable:   true,
				Amount:     2001,
				CardDigits: "5678",
			}
		})

		It("should reject without any tolerance band", func() {
			Expect(result.Verdict).To(Equal(VerdictRejected))
		})
	})

	When("the card digits do not match", func() {
		BeforeEach(func() {
			expected = uahExpectation
			analysis = &recognition.Analysis{
				Readable:   true,
				Amount:     1050,
				CardDigits: "5169155124281111",
			}
		})

		It("should reject", func() {
			Expect(result.Verdict).To(Equal(VerdictRejected))
		})

		It("should mask both values except the last four digits", func() {
			Expect(result.Reason).To(ContainSubstring("...3993"))
			Expect(result.Reason).To(ContainSubstring("...1111"))
			Expect(result.Reason).NotTo(ContainSubstring("5169155124283993"))
			Expect(result.Reason).NotTo(ContainSubstring("5169155124281111"))
		})
	})

	When("the card was not extracted", func() {
		BeforeEach(func() {
			expected = rubExpectation
			analysis = &recognition.Analysis{
				Readable: true,
				Amount:   2000,
			}
		})

		It("should reject with the card recognition message", func() {
			Expect(result.Verdict).To(Equal(VerdictRejected))
			Expect(result.Reason).To(ContainSubstring("номер карты"))
		})
	})

	When("the model flagged visual forgery traces", func() {
		BeforeEach(func() {
			expected = rubExpectation
			analysis = &recognition.Analysis{
				Readable:   true,
				Amount:     2000,
				CardDigits: "5678",
				Fraud:      true,
				Details:    "размытые края вокруг суммы",
			}
		})

		It("should reject with the forgery details", func() {
			Expect(result.Verdict).To(Equal(VerdictRejected))
			Expect(result.Reason).To(ContainSubstring("подделки"))
			Expect(result.Reason).To(ContainSubstring("размытые края"))
		})
	})
})
