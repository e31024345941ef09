package proposal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/logging"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/group"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/user"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type (
	ProposalService interface {
		Create(ctx context.Context, buyerID string, req domain.CreateProposalRequest) (domain.SentProposal, error)
		ReceivedByProducer(ctx context.Context, userID string) ([]domain.ReceivedProposal, error)
		DirectByProducer(ctx context.Context, userID string) ([]domain.ReceivedProposal, error)
		GroupRoutedByProducer(ctx context.Context, userID string) ([]domain.ReceivedProposal, error)
		SentByRepresentative(ctx context.Context, buyerID string) ([]domain.SentProposal, error)
		MarkViewed(ctx context.Context, proposalID, actingUserID string) error
		Delete(ctx context.Context, proposalID, actingUserID string) error
		UnreadCounts(ctx context.Context, userID string) (domain.UnreadCounts, error)
	}

	proposalService struct {
		proposalRepository ProposalRepository
		groupRepository    group.GroupRepository
		userRepository     user.UserRepository
	}
)

func NewProposalService(proposalRepository ProposalRepository, groupRepository group.GroupRepository, userRepository user.UserRepository) ProposalService {
	return &proposalService{
		proposalRepository: proposalRepository,
		groupRepository:    groupRepository,
		userRepository:     userRepository,
	}
}

func (s *proposalService) Create(ctx context.Context, buyerID string, req domain.CreateProposalRequest) (domain.SentProposal, error) {
	if req.PricePerSack <= 0 {
		return domain.SentProposal{}, domain.ErrInvalidPrice
	}
	if req.Quantity < 1 {
		return domain.SentProposal{}, domain.ErrInvalidProposalQty
	}
	target, err := domain.NewProposalTarget(strings.TrimSpace(req.UserID), strings.TrimSpace(req.GroupID))
	if err != nil {
		return domain.SentProposal{}, err
	}

	bid, err := uuid.Parse(buyerID)
	if err != nil {
		return domain.SentProposal{}, domain.ErrNotRepresentative
	}
	buyer, err := s.userRepository.GetUserByID(ctx, bid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SentProposal{}, domain.ErrNotRepresentative
		}
		return domain.SentProposal{}, err
	}
	if buyer.Role != domain.RoleRepresentative {
		return domain.SentProposal{}, domain.ErrNotRepresentative
	}

	proposal := &entities.Proposal{
		ID:           uuid.New(),
		BuyerID:      buyer.ID,
		PricePerSack: req.PricePerSack,
		Quantity:     req.Quantity,
		NameBuyer:    buyer.Name,
		PhoneBuyer:   buyer.Phone,
		EmailBuyer:   buyer.Email,
		Observations: strings.TrimSpace(req.Observations),
	}

	if req.HarvestID != "" {
		hid, err := uuid.Parse(req.HarvestID)
		if err != nil {
			return domain.SentProposal{}, domain.ErrHarvestNotFound
		}
		ok, err := s.proposalRepository.HarvestExists(ctx, hid)
		if err != nil {
			return domain.SentProposal{}, err
		}
		if !ok {
			return domain.SentProposal{}, domain.ErrHarvestNotFound
		}
		proposal.HarvestID = &hid
	}

	var (
		notice   *entities.Notification
		grp      *entities.Group
		producer *entities.User
	)
	switch t := target.(type) {
	case domain.ProducerTarget:
		producer, err = s.userRepository.GetUserByID(ctx, t.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.SentProposal{}, domain.ErrUserNotFound
			}
			return domain.SentProposal{}, err
		}
		proposal.UserID = &producer.ID
		notice = proposalNotice(proposal, buyer, producer.ID)
	case domain.GroupTarget:
		grp, err = s.groupRepository.GetGroupByID(ctx, t.GroupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.SentProposal{}, domain.ErrGroupNotFound
			}
			return domain.SentProposal{}, err
		}
		proposal.GroupID = &grp.ID
	}

	if err := s.proposalRepository.CreateProposal(ctx, proposal, notice); err != nil {
		return domain.SentProposal{}, err
	}

	logging.LogEvent("proposal_created", map[string]interface{}{
		"proposal_id": proposal.ID.String(),
		"buyer_id":    buyerID,
		"origin":      domain.ToProposal(proposal, grp, true).Origin,
	})
	return domain.SentProposal{
		Proposal: domain.ToProposal(proposal, grp, true),
		Producer: domain.ToPublicUserPtr(producer),
	}, nil
}

func proposalNotice(p *entities.Proposal, buyer *entities.User, recipient uuid.UUID) *entities.Notification {
	data, _ := json.Marshal(map[string]string{
		"type":        "proposal",
		"proposal_id": p.ID.String(),
	})
	sender := buyer.ID
	return &entities.Notification{
		UserID:   recipient,
		Title:    "Nova proposta recebida",
		Body:     fmt.Sprintf("%s ofereceu R$ %.2f por saca para %d sacas.", buyer.Name, p.PricePerSack, p.Quantity),
		URL:      "/proposals",
		Data:     datatypes.JSON(data),
		SenderID: &sender,
	}
}

// received loads proposals addressed to userID directly or through any
// group they own or belong to, with their groups and buyers resolved.
func (s *proposalService) received(ctx context.Context, userID string) ([]domain.ReceivedProposal, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	groupIDs, err := s.groupRepository.GroupIDsOf(ctx, uid)
	if err != nil {
		return nil, err
	}
	proposals, err := s.proposalRepository.ListReceived(ctx, uid, groupIDs)
	if err != nil {
		return nil, err
	}

	groups, buyers, err := s.resolve(ctx, proposals, func(p *entities.Proposal) uuid.UUID { return p.BuyerID })
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(proposals))
	out := make([]domain.ReceivedProposal, 0, len(proposals))
	for _, p := range proposals {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}

		out = append(out, domain.ToReceivedProposal(p, groupOf(p, groups), buyers[p.BuyerID], uid))
	}
	return out, nil
}

// resolve batch-loads the groups of proposals and the users picked by userOf.
// Missing rows are simply absent from the maps.
func (s *proposalService) resolve(ctx context.Context, proposals []*entities.Proposal, userOf func(*entities.Proposal) uuid.UUID) (map[uuid.UUID]*entities.Group, map[uuid.UUID]*entities.User, error) {
	var groupIDs, userIDs []uuid.UUID
	for _, p := range proposals {
		if p.GroupID != nil {
			groupIDs = append(groupIDs, *p.GroupID)
		}
		if id := userOf(p); id != uuid.Nil {
			userIDs = append(userIDs, id)
		}
	}
	groups, err := s.groupRepository.GetGroupsByIDs(ctx, groupIDs)
	if err != nil {
		return nil, nil, err
	}
	users, err := s.userRepository.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, nil, err
	}
	return groups, users, nil
}

func groupOf(p *entities.Proposal, groups map[uuid.UUID]*entities.Group) *entities.Group {
	if p.GroupID == nil {
		return nil
	}
	return groups[*p.GroupID]
}

func (s *proposalService) ReceivedByProducer(ctx context.Context, userID string) ([]domain.ReceivedProposal, error) {
	return s.received(ctx, userID)
}

func (s *proposalService) DirectByProducer(ctx context.Context, userID string) ([]domain.ReceivedProposal, error) {
	return s.partition(ctx, userID, domain.OriginDirect)
}

func (s *proposalService) GroupRoutedByProducer(ctx context.Context, userID string) ([]domain.ReceivedProposal, error) {
	return s.partition(ctx, userID, domain.OriginGroup)
}

func (s *proposalService) partition(ctx context.Context, userID, origin string) ([]domain.ReceivedProposal, error) {
	all, err := s.received(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ReceivedProposal, 0, len(all))
	for _, p := range all {
		if p.Origin == origin {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *proposalService) SentByRepresentative(ctx context.Context, buyerID string) ([]domain.SentProposal, error) {
	bid, err := uuid.Parse(buyerID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	proposals, err := s.proposalRepository.ListByBuyer(ctx, bid)
	if err != nil {
		return nil, err
	}

	groups, producers, err := s.resolve(ctx, proposals, func(p *entities.Proposal) uuid.UUID {
		if p.UserID == nil {
			return uuid.Nil
		}
		return *p.UserID
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.SentProposal, 0, len(proposals))
	for _, p := range proposals {
		sent := domain.SentProposal{Proposal: domain.ToProposal(p, groupOf(p, groups), true)}
		if p.UserID != nil {
			sent.Producer = domain.ToPublicUserPtr(producers[*p.UserID])
		}
		out = append(out, sent)
	}
	return out, nil
}

// load returns the proposal with its target group, nil when the group is gone.
func (s *proposalService) load(ctx context.Context, proposalID string) (*entities.Proposal, *entities.Group, error) {
	id, err := uuid.Parse(proposalID)
	if err != nil {
		return nil, nil, domain.ErrProposalNotFound
	}
	p, err := s.proposalRepository.GetProposalByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrProposalNotFound
		}
		return nil, nil, err
	}
	if p.GroupID == nil {
		return p, nil, nil
	}
	grp, err := s.groupRepository.GetGroupByID(ctx, *p.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, nil, nil
		}
		return nil, nil, err
	}
	return p, grp, nil
}

func (s *proposalService) MarkViewed(ctx context.Context, proposalID, actingUserID string) error {
	p, grp, err := s.load(ctx, proposalID)
	if err != nil {
		return err
	}
	actor, err := uuid.Parse(actingUserID)
	if err != nil || !domain.CanSeeContact(p, grp, actor) {
		return domain.ErrProposalForbidden
	}
	if p.Viewed {
		return nil
	}
	return s.proposalRepository.MarkViewed(ctx, p.ID)
}

// Delete is open to the buyer and to whoever may see the buyer's contact.
func (s *proposalService) Delete(ctx context.Context, proposalID, actingUserID string) error {
	p, grp, err := s.load(ctx, proposalID)
	if err != nil {
		return err
	}
	actor, err := uuid.Parse(actingUserID)
	if err != nil {
		return domain.ErrProposalForbidden
	}
	if p.BuyerID != actor && !domain.CanSeeContact(p, grp, actor) {
		return domain.ErrProposalForbidden
	}

	deleted, err := s.proposalRepository.DeleteProposal(ctx, p.ID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrProposalNotFound
	}
	return nil
}

func (s *proposalService) UnreadCounts(ctx context.Context, userID string) (domain.UnreadCounts, error) {
	all, err := s.received(ctx, userID)
	if err != nil {
		return domain.UnreadCounts{}, err
	}
	var counts domain.UnreadCounts
	for _, p := range all {
		if p.Viewed {
			continue
		}
		counts.Total++
		if p.Origin == domain.OriginGroup {
			counts.Group++
		} else {
			counts.Direct++
		}
	}
	return counts, nil
}
