package payment

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mkirsanov/access_bot/internal/model"
)

var _ = Describe("Policy", func() {
	validExpectations := []Expectation{
		{Currency: model.CurrencyRUB, Amount: 2000, CardNumber: "2202200312345678"},
		{Currency: model.CurrencyUAH, Amount: 1050, CardNumber: "5169155124283993"},
	}

	When("built from valid expectations", func() {
		var policy *Policy

		BeforeEach(func() {
			var err error
			policy, err = NewPolicy(validExpectations...)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the expectation for each supported currency", func() {
			for _, want := range validExpectations {
				got, err := policy.ExpectationFor(want.Currency)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want))
				Expect(got.Amount).To(BeNumerically(">", 0))
				Expect(len(got.CardLast4())).To(Equal(4))
			}
		})

		It("should fail for an unsupported currency", func() {
			_, err := policy.ExpectationFor(model.Currency("USD"))
			Expect(err).To(HaveOccurred())
		})
	})

	When("an expected amount is not positive", func() {
		It("should fail at construction", func() {
			_, err := NewPolicy(Expectation{Currency: model.CurrencyRUB, Amount: 0, CardNumber: "2202200312345678"})
			Expect(err).To(HaveOccurred())
		})
	})

	When("a card number is too short", func() {
		It("should fail at construction", func() {
			_, err := NewPolicy(Expectation{Currency: model.CurrencyRUB, Amount: 2000, CardNumber: "123"})
			Expect(err).To(HaveOccurred())
		})
	})

	When("a card number contains non-digits", func() {
		It("should fail at construction", func() {
			_, err := NewPolicy(Expectation{Currency: model.CurrencyRUB, Amount: 2000, CardNumber: "22x2200312345678"})
			Expect(err).To(HaveOccurred())
		})
	})

	When("a currency is configured twice", func() {
		It("should fail at construction", func() {
			_, err := NewPolicy(
				Expectation{Currency: model.CurrencyRUB, Amount: 2000, CardNumber: "2202200312345678"},
				Expectation{Currency: model.CurrencyRUB, Amount: 1000, CardNumber: "2202200312345678"},
			)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Expectation", func() {
		exp := Expectation{Currency: model.CurrencyUAH, Amount: 1050, CardNumber: "5169 1551 2428 3993"}

		It("should take the last four digits ignoring spaces", func() {
			Expect(exp.CardLast4()).To(Equal("3993"))
		})

		It("should format the card in groups of four", func() {
			Expect(Expectation{CardNumber: "5169155124283993"}.FormattedCard()).To(Equal("5169 1551 2428 3993"))
		})
	})
})
