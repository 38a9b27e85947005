// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

//go:build integration

package redis_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/passgate/passgate/internal/auth"
	"github.com/passgate/passgate/internal/auth/redis"
)

var _ = Describe("SessionRepository", func() {
	var (
		ctx  context.Context
		repo *redis.SessionRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(client.FlushDB(ctx).Err()).To(Succeed())
		repo = redis.NewSessionRepository(client)
	})

	newSession := func(token string, ttl time.Duration) *auth.Session {
		now := time.Now().UTC()
		s, err := auth.NewAdminSession(auth.HashSessionToken(token),
			auth.SessionMetadata{UserAgent: "ginkgo", IPAddress: "127.0.0.1"}, now, now.Add(ttl))
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	It("round-trips a session", func() {
		s := newSession("alpha", time.Hour)
		Expect(repo.Create(ctx, s)).To(Succeed())

		got, err := repo.GetByTokenHash(ctx, s.TokenHash)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(s.ID))
		Expect(got.IsAdmin).To(BeTrue())
		Expect(got.UserAgent).To(Equal("ginkgo"))
		Expect(got.ExpiresAt.Equal(s.ExpiresAt)).To(BeTrue())
	})

	It("sets the key to expire with the session", func() {
		s := newSession("beta", time.Hour)
		Expect(repo.Create(ctx, s)).To(Succeed())

		ttl, err := client.PTTL(ctx, redis.KeyPrefix+s.TokenHash).Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(ttl).To(BeNumerically(">", 59*time.Minute))
		Expect(ttl).To(BeNumerically("<=", time.Hour))
	})

	It("lets Redis evict expired sessions", func() {
		s := newSession("gamma", 200*time.Millisecond)
		Expect(repo.Create(ctx, s)).To(Succeed())

		Eventually(func() error {
			_, err := repo.GetByTokenHash(ctx, s.TokenHash)
			return err
		}).WithTimeout(3 * time.Second).WithPolling(100 * time.Millisecond).Should(MatchError(auth.ErrNotFound))

		n, err := repo.DeleteExpired(ctx, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
	})

	It("reports unknown hashes as not found", func() {
		_, err := repo.GetByTokenHash(ctx, auth.HashSessionToken("missing"))
		Expect(err).To(MatchError(auth.ErrNotFound))
		Expect(repo.DeleteByTokenHash(ctx, auth.HashSessionToken("missing"))).To(MatchError(auth.ErrNotFound))
	})

	It("backs a SessionManager end to end", func() {
		mgr, err := auth.NewSessionManager(repo)
		Expect(err).NotTo(HaveOccurred())

		token, _, err := mgr.CreateAdminSession(ctx, auth.SessionMetadata{})
		Expect(err).NotTo(HaveOccurred())

		state, err := mgr.Resolve(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(state.IsAdmin).To(BeTrue())

		Expect(mgr.Destroy(ctx, token)).To(Succeed())
		Expect(mgr.Destroy(ctx, token)).To(Succeed())

		state, err = mgr.Resolve(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(state.IsAdmin).To(BeFalse())
	})
})
