package payment

import (
	"errors"
	"strconv"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mkirsanov/access_bot/internal/model"
)

var _ = Describe("MemoryStore", func() {
	var store *MemoryStore

	const userID int64 = 7

	BeforeEach(func() {
		store = NewMemoryStore()
	})

	Describe("Get", func() {
		It("should report a missing user", func() {
			_, ok := store.Get(userID)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("SetIfAbsent", func() {
		It("should keep the existing state", func() {
			first := store.SetIfAbsent(userID, model.PaymentState{UserID: userID, Step: model.StepAwaitingReceipt, Currency: model.CurrencyRUB})
			Expect(first.Step).To(Equal(model.StepAwaitingReceipt))

			second := store.SetIfAbsent(userID, model.PaymentState{UserID: userID, Step: model.StepIdle})
			Expect(second.Step).To(Equal(model.StepAwaitingReceipt))
			Expect(second.Currency).To(Equal(model.CurrencyRUB))
		})
	})

	Describe("Update", func() {
		It("should create the entry on first use", func() {
			err := store.Update(userID, func(state *model.PaymentState) error {
				Expect(state.UserID).To(Equal(userID))
				Expect(state.Step).To(Equal(model.StepIdle))
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should discard changes when the callback fails", func() {
			err := store.Update(userID, func(state *model.PaymentState) error {
				state.Step = model.StepAwaitingReceipt
				return nil
			})
			Expect(err).NotTo(HaveOccurred())

			err = store.Update(userID, func(state *model.PaymentState) error {
				state.Step = model.StepCompleted
				return errors.New("boom")
			})
			Expect(err).To(MatchError("boom"))

			state, _ := store.Get(userID)
			Expect(state.Step).To(Equal(model.StepAwaitingReceipt))
		})

		It("should not lose concurrent read-modify-writes", func() {
			// Username используется как счетчик: только атомарный
			// Update по ключу дает ровно 100 в конце
			const workers = 100

			var wg sync.WaitGroup
			wg.Add(workers)
			for i := 0; i < workers; i++ {
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					err := store.Update(userID, func(state *model.PaymentState) error {
						n, _ := strconv.Atoi(state.Username)
						state.Username = strconv.Itoa(n + 1)
						return nil
					})
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			state, _ := store.Get(userID)
			Expect(state.Username).To(Equal("100"))
		})
	})
})
