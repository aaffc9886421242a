package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("MemoryTokenStore", func() {
	var store *MemoryTokenStore

	ginkgo.BeforeEach(func() {
		store = NewMemoryTokenStore()
	})

	ginkgo.It("should report unknown tokens as active", func() {
		gomega.Expect(store.IsRevoked("unknown")).To(gomega.BeFalse())
	})

	ginkgo.It("should report a revoked token until its expiry", func() {
		store.Revoke("jti-1", time.Now().Add(time.Hour))
		gomega.Expect(store.IsRevoked("jti-1")).To(gomega.BeTrue())
	})

	ginkgo.It("should treat an entry past its expiry as active again", func() {
		store.Revoke("jti-1", time.Now().Add(-time.Second))
		gomega.Expect(store.IsRevoked("jti-1")).To(gomega.BeFalse())
	})

	ginkgo.It("should drop expired entries on the next write", func() {
		store.Revoke("old", time.Now().Add(-time.Second))
		store.Revoke("new", time.Now().Add(time.Hour))

		store.mu.RLock()
		_, oldKept := store.revoked["old"]
		store.mu.RUnlock()

		gomega.Expect(oldKept).To(gomega.BeFalse())
		gomega.Expect(store.IsRevoked("new")).To(gomega.BeTrue())
	})

	ginkgo.It("should be safe under concurrent revokes and reads", func() {
		var wg sync.WaitGroup
		until := time.Now().Add(time.Hour)

		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func(n int) {
				defer wg.Done()
				store.Revoke(fmt.Sprintf("jti-%d", n), until)
			}(i)
			go func(n int) {
				defer wg.Done()
				store.IsRevoked(fmt.Sprintf("jti-%d", n))
			}(i)
		}
		wg.Wait()

		for i := 0; i < 50; i++ {
			gomega.Expect(store.IsRevoked(fmt.Sprintf("jti-%d", i))).To(gomega.BeTrue())
		}
	})
})
