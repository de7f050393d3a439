package contract

import (
	"context"
	"errors"
	"testing"

	"gigwork-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeContractRepo struct {
	contracts map[uuid.UUID]*models.Contract
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{contracts: make(map[uuid.UUID]*models.Contract)}
}

func (r *fakeContractRepo) Create(_ context.Context, c *models.Contract) error {
	r.contracts[c.ID] = c
	return nil
}

func (r *fakeContractRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Contract, error) {
	c, ok := r.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeContractRepo) FindByGigID(_ context.Context, gigID uuid.UUID) ([]*models.Contract, error) {
	var out []*models.Contract
	for _, c := range r.contracts {
		if c.GigID == gigID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeContractRepo) FindByGigIDs(_ context.Context, gigIDs []uuid.UUID) ([]*models.Contract, error) {
	var out []*models.Contract
	for _, id := range gigIDs {
		for _, c := range r.contracts {
			if c.GigID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (r *fakeContractRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	var out []*models.Contract
	for _, c := range r.contracts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeContractRepo) ExistsForGigAndUser(_ context.Context, gigID, userID uuid.UUID) (bool, error) {
	for _, c := range r.contracts {
		if c.GigID == gigID && c.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeContractRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.ContractStatus) (*models.Contract, error) {
	c, ok := r.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c.Status = status
	copied := *c
	return &copied, nil
}

func (r *fakeContractRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := r.contracts[id]; !ok {
		return 0, nil
	}
	delete(r.contracts, id)
	return 1, nil
}

type fakeGigReader struct {
	gigs map[uuid.UUID]*models.Gig
}

func newFakeGigReader() *fakeGigReader {
	return &fakeGigReader{gigs: make(map[uuid.UUID]*models.Gig)}
}

func (r *fakeGigReader) add(ownerID uuid.UUID) *models.Gig {
	g := &models.Gig{ID: uuid.New(), UserID: ownerID, Title: "test gig"}
	r.gigs[g.ID] = g
	return g
}

func (r *fakeGigReader) FindByID(_ context.Context, id uuid.UUID) (*models.Gig, error) {
	g, ok := r.gigs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return g, nil
}

func (r *fakeGigReader) FindByUserID(_ context.Context, userID uuid.UUID) ([]*models.Gig, error) {
	var out []*models.Gig
	for _, g := range r.gigs {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func TestCreateContract(t *testing.T) {
	ctx := context.Background()
	freelancer, client := uuid.New(), uuid.New()

	t.Run("creates pending contract", func(t *testing.T) {
		repo, gigs := newFakeContractRepo(), newFakeGigReader()
		svc := NewContractService(repo, gigs)
		gig := gigs.add(freelancer)

		c, err := svc.CreateContract(ctx, client, &models.CreateContractRequest{GigID: gig.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Status != models.ContractPending {
			t.Fatalf("status = %s, want pending", c.Status)
		}
		if c.UserID != client || c.GigID != gig.ID {
			t.Fatalf("wrong parties: %+v", c)
		}
	})

	t.Run("rejects own gig", func(t *testing.T) {
		repo, gigs := newFakeContractRepo(), newFakeGigReader()
		svc := NewContractService(repo, gigs)
		gig := gigs.add(freelancer)

		_, err := svc.CreateContract(ctx, freelancer, &models.CreateContractRequest{GigID: gig.ID})
		if !errors.Is(err, ErrOwnGig) {
			t.Fatalf("err = %v, want ErrOwnGig", err)
		}
	})

	t.Run("rejects duplicate", func(t *testing.T) {
		repo, gigs := newFakeContractRepo(), newFakeGigReader()
		svc := NewContractService(repo, gigs)
		gig := gigs.add(freelancer)

		if _, err := svc.CreateContract(ctx, client, &models.CreateContractRequest{GigID: gig.ID}); err != nil {
			t.Fatalf("first create failed: %v", err)
		}
		_, err := svc.CreateContract(ctx, client, &models.CreateContractRequest{GigID: gig.ID})
		if !errors.Is(err, ErrContractExists) {
			t.Fatalf("err = %v, want ErrContractExists", err)
		}
	})

	t.Run("rejects unknown gig", func(t *testing.T) {
		svc := NewContractService(newFakeContractRepo(), newFakeGigReader())
		_, err := svc.CreateContract(ctx, client, &models.CreateContractRequest{GigID: uuid.New()})
		if !errors.Is(err, ErrGigNotFound) {
			t.Fatalf("err = %v, want ErrGigNotFound", err)
		}
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	freelancer, client := uuid.New(), uuid.New()

	setup := func(t *testing.T) (ContractService, *models.Contract) {
		t.Helper()
		repo, gigs := newFakeContractRepo(), newFakeGigReader()
		svc := NewContractService(repo, gigs)
		gig := gigs.add(freelancer)
		c, err := svc.CreateContract(ctx, client, &models.CreateContractRequest{GigID: gig.ID})
		if err != nil {
			t.Fatalf("setup create failed: %v", err)
		}
		return svc, c
	}

	t.Run("gig owner accepts", func(t *testing.T) {
		svc, c := setup(t)
		updated, err := svc.UpdateStatus(ctx, c.ID, freelancer, models.ContractAccepted)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Status != models.ContractAccepted {
			t.Fatalf("status = %s", updated.Status)
		}
	})

	t.Run("client cannot update", func(t *testing.T) {
		svc, c := setup(t)
		_, err := svc.UpdateStatus(ctx, c.ID, client, models.ContractAccepted)
		if !errors.Is(err, ErrNotGigOwner) {
			t.Fatalf("err = %v, want ErrNotGigOwner", err)
		}
	})

	t.Run("only pending can change", func(t *testing.T) {
		svc, c := setup(t)
		if _, err := svc.UpdateStatus(ctx, c.ID, freelancer, models.ContractRejected); err != nil {
			t.Fatalf("first update failed: %v", err)
		}
		_, err := svc.UpdateStatus(ctx, c.ID, freelancer, models.ContractAccepted)
		if !errors.Is(err, ErrNotPending) {
			t.Fatalf("err = %v, want ErrNotPending", err)
		}
	})
}

func TestWithdrawContract(t *testing.T) {
	ctx := context.Background()
	freelancer, client := uuid.New(), uuid.New()

	repo, gigs := newFakeContractRepo(), newFakeGigReader()
	svc := NewContractService(repo, gigs)
	gig := gigs.add(freelancer)
	c, err := svc.CreateContract(ctx, client, &models.CreateContractRequest{GigID: gig.ID})
	if err != nil {
		t.Fatalf("setup create failed: %v", err)
	}

	if err := svc.WithdrawContract(ctx, c.ID, freelancer); !errors.Is(err, ErrNotContractOwner) {
		t.Fatalf("err = %v, want ErrNotContractOwner", err)
	}
	if err := svc.WithdrawContract(ctx, c.ID, client); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if _, err := svc.GetContract(ctx, c.ID, client); !errors.Is(err, ErrContractNotFound) {
		t.Fatalf("err = %v, want ErrContractNotFound", err)
	}
}

func TestAuthorizeChat(t *testing.T) {
	ctx := context.Background()
	freelancer, client, stranger := uuid.New(), uuid.New(), uuid.New()

	repo, gigs := newFakeContractRepo(), newFakeGigReader()
	svc := NewContractService(repo, gigs)
	gig := gigs.add(freelancer)
	c, err := svc.CreateContract(ctx, client, &models.CreateContractRequest{GigID: gig.ID})
	if err != nil {
		t.Fatalf("setup create failed: %v", err)
	}

	t.Run("pending contract has no chat", func(t *testing.T) {
		if err := svc.AuthorizeChat(ctx, c.ID, client); !errors.Is(err, ErrChatNotAvailable) {
			t.Fatalf("err = %v, want ErrChatNotAvailable", err)
		}
	})

	if _, err := svc.UpdateStatus(ctx, c.ID, freelancer, models.ContractAccepted); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	t.Run("client allowed", func(t *testing.T) {
		if err := svc.AuthorizeChat(ctx, c.ID, client); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("gig owner allowed", func(t *testing.T) {
		if err := svc.AuthorizeChat(ctx, c.ID, freelancer); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("stranger rejected", func(t *testing.T) {
		if err := svc.AuthorizeChat(ctx, c.ID, stranger); !errors.Is(err, ErrNotParticipant) {
			t.Fatalf("err = %v, want ErrNotParticipant", err)
		}
	})
	t.Run("unknown contract", func(t *testing.T) {
		if err := svc.AuthorizeChat(ctx, uuid.New(), client); !errors.Is(err, ErrContractNotFound) {
			t.Fatalf("err = %v, want ErrContractNotFound", err)
		}
	})
}

func TestGetContractsForUserMergesBothSides(t *testing.T) {
	ctx := context.Background()
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	repo, gigs := newFakeContractRepo(), newFakeGigReader()
	svc := NewContractService(repo, gigs)

	// Alice owns a gig; bob and carol send contracts to it. Alice also
	// sends a contract to bob's gig.
	aliceGig := gigs.add(alice)
	bobGig := gigs.add(bob)
	for _, client := range []uuid.UUID{bob, carol} {
		if _, err := svc.CreateContract(ctx, client, &models.CreateContractRequest{GigID: aliceGig.ID}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if _, err := svc.CreateContract(ctx, alice, &models.CreateContractRequest{GigID: bobGig.ID}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := svc.GetContractsForUser(ctx, alice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d contracts, want 3", len(got))
	}

	seen := make(map[uuid.UUID]bool)
	for _, c := range got {
		if seen[c.ID] {
			t.Fatalf("contract %s returned twice", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestContractParties(t *testing.T) {
	ctx := context.Background()
	freelancer, client := uuid.New(), uuid.New()

	repo, gigs := newFakeContractRepo(), newFakeGigReader()
	svc := NewContractService(repo, gigs)
	gig := gigs.add(freelancer)
	c, err := svc.CreateContract(ctx, client, &models.CreateContractRequest{GigID: gig.ID})
	if err != nil {
		t.Fatalf("setup create failed: %v", err)
	}

	gotClient, gotFreelancer, err := svc.ContractParties(ctx, c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotClient != client || gotFreelancer != freelancer {
		t.Fatalf("parties = (%s, %s), want (%s, %s)", gotClient, gotFreelancer, client, freelancer)
	}
}
