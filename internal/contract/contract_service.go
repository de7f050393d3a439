package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gigwork-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrGigNotFound      = errors.New("gig not found")
	ErrOwnGig           = errors.New("cannot create a contract on your own gig")
	ErrContractExists   = errors.New("contract request already exists for this gig")
	ErrNotGigOwner      = errors.New("only the gig owner can accept or reject contracts")
	ErrNotContractOwner = errors.New("only the requesting client can withdraw a contract")
	ErrNotPending       = errors.New("only pending contracts can be updated")
	ErrNotParticipant   = errors.New("you are not a party to this contract")
	ErrChatNotAvailable = errors.New("chat is only available for accepted contracts")
)

// GigReader is the slice of the gig repository this service needs to resolve
// gig ownership and the user's own listings.
type GigReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Gig, error)
}

type ContractService interface {
	CreateContract(ctx context.Context, clientID uuid.UUID, req *models.CreateContractRequest) (*models.Contract, error)
	GetContract(ctx context.Context, id, userID uuid.UUID) (*models.Contract, error)
	GetContractsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error)
	GetContractsByGig(ctx context.Context, gigID, userID uuid.UUID) ([]*models.Contract, error)
	GetContractsSentByUser(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error)
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.ContractStatus) (*models.Contract, error)
	WithdrawContract(ctx context.Context, id, userID uuid.UUID) error

	// AuthorizeChat is the contract-side gate of the real-time chat: the
	// contract must exist, be accepted, and the user must be the client or
	// the gig owner.
	AuthorizeChat(ctx context.Context, contractID, userID uuid.UUID) error

	// ContractParties resolves the client and freelancer of a contract.
	ContractParties(ctx context.Context, contractID uuid.UUID) (clientID, freelancerID uuid.UUID, err error)
}

type contractService struct {
	repo ContractRepository
	gigs GigReader
}

func NewContractService(repo ContractRepository, gigs GigReader) ContractService {
	return &contractService{repo: repo, gigs: gigs}
}

func (s *contractService) CreateContract(ctx context.Context, clientID uuid.UUID, req *models.CreateContractRequest) (*models.Contract, error) {
	gig, err := s.gigs.FindByID(ctx, req.GigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		return nil, fmt.Errorf("look up gig: %w", err)
	}

	if gig.UserID == clientID {
		return nil, ErrOwnGig
	}

	exists, err := s.repo.ExistsForGigAndUser(ctx, req.GigID, clientID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate contract: %w", err)
	}
	if exists {
		return nil, ErrContractExists
	}

	contract := &models.Contract{
		ID:        uuid.New(),
		GigID:     req.GigID,
		UserID:    clientID,
		Status:    models.ContractPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, contract); err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}
	return contract, nil
}

func (s *contractService) GetContract(ctx context.Context, id, userID uuid.UUID) (*models.Contract, error) {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return nil, err
	}

	if contract.UserID != userID {
		owner, err := s.isGigOwner(ctx, contract.GigID, userID)
		if err != nil {
			return nil, err
		}
		if !owner {
			return nil, ErrNotParticipant
		}
	}
	return contract, nil
}

// GetContractsForUser merges the contracts the user sent as a client with the
// contracts received on their gigs.
func (s *contractService) GetContractsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	asClient, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list contracts as client: %w", err)
	}

	asFreelancer, err := s.contractsOnOwnGigs(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(asClient))
	merged := asClient
	for _, c := range asClient {
		seen[c.ID] = true
	}
	for _, c := range asFreelancer {
		if !seen[c.ID] {
			merged = append(merged, c)
			seen[c.ID] = true
		}
	}
	return merged, nil
}

func (s *contractService) GetContractsByGig(ctx context.Context, gigID, userID uuid.UUID) ([]*models.Contract, error) {
	gig, err := s.gigs.FindByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		return nil, fmt.Errorf("look up gig: %w", err)
	}
	if gig.UserID != userID {
		return nil, ErrNotGigOwner
	}
	return s.repo.FindByGigID(ctx, gigID)
}

func (s *contractService) GetContractsSentByUser(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *contractService) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.ContractStatus) (*models.Contract, error) {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.isGigOwner(ctx, contract.GigID, userID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, ErrNotGigOwner
	}

	if contract.Status != models.ContractPending {
		return nil, ErrNotPending
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *contractService) WithdrawContract(ctx context.Context, id, userID uuid.UUID) error {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return err
	}

	if contract.UserID != userID {
		return ErrNotContractOwner
	}
	if contract.Status != models.ContractPending {
		return ErrNotPending
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	if affected == 0 {
		return ErrContractNotFound
	}
	return nil
}

func (s *contractService) AuthorizeChat(ctx context.Context, contractID, userID uuid.UUID) error {
	contract, err := s.findContract(ctx, contractID)
	if err != nil {
		return err
	}

	if contract.Status != models.ContractAccepted {
		return ErrChatNotAvailable
	}

	if contract.UserID == userID {
		return nil
	}
	owner, err := s.isGigOwner(ctx, contract.GigID, userID)
	if err != nil {
		return err
	}
	if !owner {
		return ErrNotParticipant
	}
	return nil
}

func (s *contractService) ContractParties(ctx context.Context, contractID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	contract, err := s.findContract(ctx, contractID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	gig, err := s.gigs.FindByID(ctx, contract.GigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, uuid.Nil, ErrGigNotFound
		}
		return uuid.Nil, uuid.Nil, fmt.Errorf("look up gig: %w", err)
	}
	return contract.UserID, gig.UserID, nil
}

// contractsOnOwnGigs lists the contracts other clients sent to the user's
// gigs.
func (s *contractService) contractsOnOwnGigs(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	gigs, err := s.gigs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list own gigs: %w", err)
	}
	if len(gigs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(gigs))
	for _, g := range gigs {
		ids = append(ids, g.ID)
	}
	contracts, err := s.repo.FindByGigIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list contracts on own gigs: %w", err)
	}
	return contracts, nil
}

func (s *contractService) findContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("look up contract: %w", err)
	}
	return contract, nil
}

func (s *contractService) isGigOwner(ctx context.Context, gigID, userID uuid.UUID) (bool, error) {
	gig, err := s.gigs.FindByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("look up gig: %w", err)
	}
	return gig.UserID == userID, nil
}
