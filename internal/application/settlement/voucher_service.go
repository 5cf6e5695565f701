package settlement

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// voucherCodeAlphabet avoids ambiguous characters so codes survive being
// read aloud or printed
const voucherCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const voucherCodeLength = 8

// VoucherGroupService manages batches of pre-funded voucher accounts.
// Funding is expressed entirely through one-sided transfers: creation
// funds each member once, adjustments write the delta, so the ledger's
// conservation invariant keeps holding.
type VoucherGroupService struct {
	voucherGroupRepo settlement.VoucherGroupRepository
	userRepo         identity.UserRepository
	scope            TransactionScope
	eventBus         shared.EventPublisher
	logger           *zap.Logger
}

// NewVoucherGroupService creates a new VoucherGroupService
func NewVoucherGroupService(
	voucherGroupRepo settlement.VoucherGroupRepository,
	userRepo identity.UserRepository,
	scope TransactionScope,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *VoucherGroupService {
	return &VoucherGroupService{
		voucherGroupRepo: voucherGroupRepo,
		userRepo:         userRepo,
		scope:            scope,
		eventBus:         eventBus,
		logger:           logger,
	}
}

// CreateVoucherGroup creates the group, its member accounts and their
// funding transfers atomically. The redemption codes are returned exactly
// once; only their bcrypt hashes are stored.
func (s *VoucherGroupService) CreateVoucherGroup(ctx context.Context, req CreateVoucherGroupRequest) (*VoucherGroupResponse, error) {
	balance, err := requestBalance(req.Balance, req.Currency)
	if err != nil {
		return nil, err
	}
	group, err := settlement.NewVoucherGroup(req.Name, req.ActiveStartDate, req.ActiveEndDate, balance, req.Amount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active := group.IsActiveAt(now)

	var (
		issued    []IssuedVoucher
		transfers []*ledger.Transfer
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		members, codes, err := s.issueMembers(group.Name, req.Amount, active)
		if err != nil {
			return err
		}
		if err := repos.UserRepo().SaveBatch(ctx, members); err != nil {
			return fmt.Errorf("saving voucher accounts: %w", err)
		}

		issued = make([]IssuedVoucher, len(members))
		for i, m := range members {
			group.AddUser(m.ID)
			issued[i] = IssuedVoucher{UserID: m.ID, Code: codes[i]}
		}
		if err := repos.VoucherGroupRepo().Save(ctx, group); err != nil {
			return fmt.Errorf("saving voucher group: %w", err)
		}

		if balance.IsPositive() {
			transfers, err = fundingTransfers(group, group.UserIDs(), balance)
			if err != nil {
				return err
			}
			if err := repos.TransferRepo().InsertBatch(ctx, transfers); err != nil {
				return fmt.Errorf("writing funding transfers: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, t := range transfers {
		s.publish(ctx, ledger.NewTransferCreatedEvent(t))
	}
	s.logger.Info("voucher group created",
		zap.String("voucher_group_id", group.ID.String()),
		zap.Int("members", req.Amount),
		zap.Int64("balance", balance.Amount()))
	return toVoucherGroupResponse(group, issued), nil
}

// UpdateVoucherGroup applies the new parameters diff-wise. Each existing
// member gets one corrective transfer of the balance difference, new
// members are created with the full new balance, and every member's
// activation is recomputed against the possibly-changed window.
func (s *VoucherGroupService) UpdateVoucherGroup(ctx context.Context, id uuid.UUID, req UpdateVoucherGroupRequest) (*VoucherGroupResponse, error) {
	newBalance, err := requestBalance(req.Balance, req.Currency)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var (
		group     *settlement.VoucherGroup
		issued    []IssuedVoucher
		transfers []*ledger.Transfer
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		group, err = repos.VoucherGroupRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		oldBalance := group.BalancePerUser
		existing := group.UserIDs()
		if err := group.Update(req.Name, req.ActiveStartDate, req.ActiveEndDate, newBalance, req.Amount); err != nil {
			return err
		}

		active := group.IsActiveAt(now)

		delta, err := newBalance.Subtract(oldBalance)
		if err != nil {
			return err
		}
		if !delta.IsZero() {
			corrective, err := correctionTransfers(group, existing, delta)
			if err != nil {
				return err
			}
			transfers = append(transfers, corrective...)
		}

		grown := req.Amount - len(existing)
		if grown > 0 {
			members, codes, err := s.issueMembers(group.Name, grown, active)
			if err != nil {
				return err
			}
			if err := repos.UserRepo().SaveBatch(ctx, members); err != nil {
				return fmt.Errorf("saving voucher accounts: %w", err)
			}
			issued = make([]IssuedVoucher, len(members))
			newIDs := make([]uuid.UUID, len(members))
			for i, m := range members {
				group.AddUser(m.ID)
				issued[i] = IssuedVoucher{UserID: m.ID, Code: codes[i]}
				newIDs[i] = m.ID
			}
			if newBalance.IsPositive() {
				funding, err := fundingTransfers(group, newIDs, newBalance)
				if err != nil {
					return err
				}
				transfers = append(transfers, funding...)
			}
		}

		if err := s.recomputeActivation(ctx, repos, existing, active); err != nil {
			return err
		}

		if len(transfers) > 0 {
			if err := repos.TransferRepo().InsertBatch(ctx, transfers); err != nil {
				return fmt.Errorf("writing adjustment transfers: %w", err)
			}
		}
		return repos.VoucherGroupRepo().Save(ctx, group)
	})
	if err != nil {
		return nil, err
	}

	for _, t := range transfers {
		s.publish(ctx, ledger.NewTransferCreatedEvent(t))
	}
	return toVoucherGroupResponse(group, issued), nil
}

// GetVoucherGroup loads one group with its membership
func (s *VoucherGroupService) GetVoucherGroup(ctx context.Context, id uuid.UUID) (*VoucherGroupResponse, error) {
	group, err := s.voucherGroupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toVoucherGroupResponse(group, nil), nil
}

// ListVoucherGroups lists groups matching the filter
func (s *VoucherGroupService) ListVoucherGroups(ctx context.Context, filter shared.Filter) (*shared.Paginated[VoucherGroupResponse], error) {
	groups, err := s.voucherGroupRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.voucherGroupRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]VoucherGroupResponse, len(groups))
	for i := range groups {
		responses[i] = *toVoucherGroupResponse(&groups[i], nil)
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// CloseExpiredVoucherGroups deactivates the members of every group whose
// active window has closed. Meant to run from a scheduler; the call is
// idempotent.
func (s *VoucherGroupService) CloseExpiredVoucherGroups(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.voucherGroupRepo.FindExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range expired {
		group := &expired[i]
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			return s.recomputeActivation(ctx, repos, group.UserIDs(), false)
		})
		if err != nil {
			return closed, fmt.Errorf("closing voucher group %s: %w", group.ID, err)
		}
		closed++
		s.logger.Info("voucher group expired",
			zap.String("voucher_group_id", group.ID.String()),
			zap.Time("active_end_date", group.ActiveEndDate))
	}
	return closed, nil
}

// issueMembers creates count fresh voucher accounts with freshly issued
// redemption codes. Returns the accounts and the plaintext codes in the
// same order.
func (s *VoucherGroupService) issueMembers(groupName string, count int, active bool) ([]*identity.User, []string, error) {
	members := make([]*identity.User, count)
	codes := make([]string, count)
	for i := 0; i < count; i++ {
		user, err := identity.NewUser(fmt.Sprintf("%s #%d", groupName, i+1), "", identity.UserTypeVoucher, active)
		if err != nil {
			return nil, nil, err
		}
		code, err := generateVoucherCode()
		if err != nil {
			return nil, nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, fmt.Errorf("hashing voucher code: %w", err)
		}
		if err := user.SetVoucherCodeHash(string(hash)); err != nil {
			return nil, nil, err
		}
		members[i] = user
		codes[i] = code
	}
	return members, codes, nil
}

// recomputeActivation flips the activation state of the given members
func (s *VoucherGroupService) recomputeActivation(ctx context.Context, repos TransactionalRepositories,
	memberIDs []uuid.UUID, active bool) error {
	if len(memberIDs) == 0 {
		return nil
	}
	members, err := repos.UserRepo().FindByIDs(ctx, memberIDs)
	if err != nil {
		return err
	}
	changed := make([]*identity.User, 0, len(members))
	for i := range members {
		if members[i].Deleted || members[i].Active == active {
			continue
		}
		members[i].SetActive(active)
		changed = append(changed, &members[i])
	}
	if len(changed) == 0 {
		return nil
	}
	return repos.UserRepo().SaveBatch(ctx, changed)
}

// fundingTransfers builds one one-sided deposit per member
func fundingTransfers(group *settlement.VoucherGroup, memberIDs []uuid.UUID,
	amount valueobject.Money) ([]*ledger.Transfer, error) {
	transfers := make([]*ledger.Transfer, 0, len(memberIDs))
	for _, id := range memberIDs {
		memberID := id
		t, err := ledger.NewTransfer(nil, &memberID, amount, "Voucher funding "+group.Name)
		if err != nil {
			return nil, err
		}
		t.VoucherGroupID = &group.ID
		transfers = append(transfers, t)
	}
	return transfers, nil
}

// correctionTransfers builds one transfer per member moving the balance
// delta in (positive) or out (negative)
func correctionTransfers(group *settlement.VoucherGroup, memberIDs []uuid.UUID,
	delta valueobject.Money) ([]*ledger.Transfer, error) {
	transfers := make([]*ledger.Transfer, 0, len(memberIDs))
	for _, id := range memberIDs {
		memberID := id
		var (
			t   *ledger.Transfer
			err error
		)
		if delta.IsPositive() {
			t, err = ledger.NewTransfer(nil, &memberID, delta, "Voucher adjustment "+group.Name)
		} else {
			t, err = ledger.NewTransfer(&memberID, nil, delta.Abs(), "Voucher adjustment "+group.Name)
		}
		if err != nil {
			return nil, err
		}
		t.VoucherGroupID = &group.ID
		transfers = append(transfers, t)
	}
	return transfers, nil
}

// requestBalance converts the wire amount to Money, defaulting to EUR
func requestBalance(amount int64, currency string) (valueobject.Money, error) {
	if currency == "" {
		return valueobject.NewMoneyEUR(amount), nil
	}
	return valueobject.NewMoney(amount, valueobject.Currency(currency))
}

// generateVoucherCode draws a fixed-length code from the unambiguous
// alphabet using crypto/rand
func generateVoucherCode() (string, error) {
	buf := make([]byte, voucherCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading randomness: %w", err)
	}
	code := make([]byte, voucherCodeLength)
	for i, b := range buf {
		code[i] = voucherCodeAlphabet[int(b)%len(voucherCodeAlphabet)]
	}
	return string(code), nil
}

func (s *VoucherGroupService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish settlement event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}
