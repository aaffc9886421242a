package auth

import (
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("GeneratePassword", func() {
	ginkgo.It("should contain one character of every class", func() {
		for i := 0; i < 20; i++ {
			password, err := GeneratePassword()
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(len(password)).To(gomega.BeNumerically(">=", 8))
			gomega.Expect(strings.ContainsAny(password, lowercaseLetters)).To(gomega.BeTrue())
			gomega.Expect(strings.ContainsAny(password, uppercaseLetters)).To(gomega.BeTrue())
			gomega.Expect(strings.ContainsAny(password, specialChars)).To(gomega.BeTrue())
			gomega.Expect(strings.ContainsAny(password, digits)).To(gomega.BeTrue())
		}
	})

	ginkgo.It("should not repeat across calls", func() {
		first, err := GeneratePassword()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		second, err := GeneratePassword()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(first).NotTo(gomega.Equal(second))
	})
})
