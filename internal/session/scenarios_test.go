// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package session_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/aqidash/aqidash/internal/auth"
	"github.com/aqidash/aqidash/internal/auth/authtest"
	"github.com/aqidash/aqidash/internal/session"
)

var _ = Describe("Session scenarios", func() {
	var (
		ctx     context.Context
		repo    *authtest.MemoryUserRepository
		machine *session.Machine
		state   session.State
	)

	dispatch := func(intent session.Intent, form session.Form) (session.Result, error) {
		res, err := machine.Dispatch(ctx, state, intent, form)
		state = res.State
		return res, err
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = authtest.NewMemoryUserRepository()
		hasher := auth.NewArgon2idHasherWithParams(auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32})
		svc, err := auth.NewService(repo, hasher)
		Expect(err).NotTo(HaveOccurred())
		machine, err = session.NewMachine(svc)
		Expect(err).NotTo(HaveOccurred())
		state = session.NewState()
	})

	Describe("alice registers, fails a login, signs in and out", func() {
		It("follows the page flow", func() {
			res, err := dispatch(session.IntentRegisterSubmit, session.Form{
				Username: "alice", Email: "a@x.com", Password: "pw1", ConfirmPassword: "pw1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Notice).To(Equal("Account created successfully!"))
			Expect(state.Page).To(Equal(session.PageLogin))

			_, err = dispatch(session.IntentLoginSubmit, session.Form{Username: "alice", Password: "wrong"})
			Expect(auth.KindOf(err)).To(Equal(auth.KindInvalidCredentials))
			Expect(state.Page).To(Equal(session.PageLogin))
			Expect(state.Authenticated()).To(BeFalse())

			res, err = dispatch(session.IntentLoginSubmit, session.Form{Username: "alice", Password: "pw1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Notice).To(Equal("Welcome, alice!"))
			Expect(state.User).To(Equal("alice"))
			Expect(state.Page).To(Equal(session.PageDescription))

			_, err = dispatch(session.IntentExploreDashboard, session.Form{})
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Page).To(Equal(session.PageDashboard))

			_, err = dispatch(session.IntentLogout, session.Form{})
			Expect(err).NotTo(HaveOccurred())
			Expect(state.User).To(BeEmpty())
			Expect(state.Page).To(Equal(session.PageLogin))
		})
	})

	Describe("bob registers twice", func() {
		It("rejects the second registration and keeps one record", func() {
			_, err := dispatch(session.IntentRegisterSubmit, session.Form{
				Username: "bob", Email: "b1@x.com", Password: "pw", ConfirmPassword: "pw",
			})
			Expect(err).NotTo(HaveOccurred())

			state = session.State{ID: state.ID, Page: session.PageRegister}
			_, err = dispatch(session.IntentRegisterSubmit, session.Form{
				Username: "bob", Email: "b2@x.com", Password: "pw", ConfirmPassword: "pw",
			})
			Expect(auth.KindOf(err)).To(Equal(auth.KindDuplicateCredential))
			Expect(state.Page).To(Equal(session.PageRegister))

			bobs := 0
			for _, u := range repo.Users() {
				if u.Username == "bob" {
					bobs++
				}
			}
			Expect(bobs).To(Equal(1))
		})
	})

	Describe("password reset", func() {
		BeforeEach(func() {
			_, err := dispatch(session.IntentRegisterSubmit, session.Form{
				Username: "carol", Email: "c@x.com", Password: "old", ConfirmPassword: "old",
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = dispatch(session.IntentGotoReset, session.Form{})
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Page).To(Equal(session.PageResetPassword))
		})

		It("replaces the password and returns to login", func() {
			res, err := dispatch(session.IntentResetSubmit, session.Form{
				Email: "c@x.com", Password: "newpw", ConfirmPassword: "newpw",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Notice).To(Equal(session.NoticePasswordReset))
			Expect(state.Page).To(Equal(session.PageLogin))

			_, err = dispatch(session.IntentLoginSubmit, session.Form{Username: "carol", Password: "old"})
			Expect(auth.KindOf(err)).To(Equal(auth.KindInvalidCredentials))

			_, err = dispatch(session.IntentLoginSubmit, session.Form{Username: "carol", Password: "newpw"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("stays on the reset page when the passwords differ", func() {
			hashBefore := repo.Users()[0].PasswordHash

			_, err := dispatch(session.IntentResetSubmit, session.Form{
				Email: "c@x.com", Password: "a", ConfirmPassword: "b",
			})
			Expect(auth.KindOf(err)).To(Equal(auth.KindPasswordMismatch))
			Expect(state.Page).To(Equal(session.PageResetPassword))
			Expect(repo.Users()[0].PasswordHash).To(Equal(hashBefore))
		})

		It("reports an unknown email", func() {
			_, err := dispatch(session.IntentResetSubmit, session.Form{
				Email: "nobody@x.com", Password: "n", ConfirmPassword: "n",
			})
			Expect(auth.KindOf(err)).To(Equal(auth.KindUnknownEmail))
			Expect(state.Page).To(Equal(session.PageResetPassword))
		})
	})
})
