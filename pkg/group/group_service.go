package group

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/logging"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/user"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type (
	GroupService interface {
		Create(ctx context.Context, ownerID string, req domain.CreateGroupRequest) (domain.Group, error)
		GetByID(ctx context.Context, groupID string) (domain.Group, error)
		ListWithParticipants(ctx context.Context) ([]domain.Group, error)
		OwnedBy(ctx context.Context, userID string) ([]domain.Group, error)
		ParticipatingIn(ctx context.Context, userID string) ([]domain.Group, error)
		MembershipOf(ctx context.Context, userID string) ([]domain.Group, error)
		AddParticipant(ctx context.Context, actingUserID, groupID, userID string) (domain.Group, error)
		RemoveParticipant(ctx context.Context, actingUserID, groupID, userID string) error
		Update(ctx context.Context, actingUserID, groupID string, req domain.UpdateGroupRequest) (domain.Group, error)
		AdjustStock(ctx context.Context, actingUserID, groupID string, delta int) (domain.Group, error)
		Remove(ctx context.Context, actingUserID, groupID string) error
	}

	groupService struct {
		groupRepository GroupRepository
		userRepository  user.UserRepository
	}
)

func NewGroupService(groupRepository GroupRepository, userRepository user.UserRepository) GroupService {
	return &groupService{
		groupRepository: groupRepository,
		userRepository:  userRepository,
	}
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(strings.TrimSpace(r))
		if err != nil {
			return nil, domain.NewValidationError("invalid participant id %q", r)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *groupService) load(ctx context.Context, groupID string) (*entities.Group, error) {
	id, err := uuid.Parse(groupID)
	if err != nil {
		return nil, domain.ErrGroupNotFound
	}
	group, err := s.groupRepository.GetGroupByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

// toDomain resolves members against the user table; ids without a user
// row are dropped.
func (s *groupService) toDomain(ctx context.Context, groups []*entities.Group) ([]domain.Group, error) {
	var ids []uuid.UUID
	for _, g := range groups {
		ids = append(ids, g.ParticipantIDs()...)
	}
	users, err := s.userRepository.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Group, 0, len(groups))
	for _, g := range groups {
		members := make([]domain.PublicUser, 0, len(g.Participants))
		for _, id := range g.ParticipantIDs() {
			if u, ok := users[id]; ok {
				members = append(members, domain.ToPublicUser(u))
			}
		}
		out = append(out, domain.Group{
			ID:           g.ID.String(),
			Name:         g.Name,
			Description:  g.Description,
			Stock:        g.Stock,
			CreatedBy:    g.CreatedBy.String(),
			Participants: members,
			CreatedAt:    g.CreatedAt,
		})
	}
	return out, nil
}

func (s *groupService) one(ctx context.Context, group *entities.Group) (domain.Group, error) {
	out, err := s.toDomain(ctx, []*entities.Group{group})
	if err != nil {
		return domain.Group{}, err
	}
	return out[0], nil
}

func (s *groupService) Create(ctx context.Context, ownerID string, req domain.CreateGroupRequest) (domain.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Group{}, domain.ErrGroupNameRequired
	}
	if req.Stock < 0 {
		return domain.Group{}, domain.ErrNegativeStock
	}
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return domain.Group{}, domain.ErrParseUUID
	}
	participants, err := parseIDs(req.Participants)
	if err != nil {
		return domain.Group{}, err
	}

	group := &entities.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Stock:       req.Stock,
		CreatedBy:   owner,
	}
	if err := s.groupRepository.CreateGroup(ctx, group, participants); err != nil {
		return domain.Group{}, err
	}

	logging.LogEvent("group_created", map[string]interface{}{
		"group_id": group.ID.String(),
		"owner_id": ownerID,
	})
	created, err := s.load(ctx, group.ID.String())
	if err != nil {
		return domain.Group{}, err
	}
	return s.one(ctx, created)
}

func (s *groupService) GetByID(ctx context.Context, groupID string) (domain.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	return s.one(ctx, group)
}

func (s *groupService) ListWithParticipants(ctx context.Context) ([]domain.Group, error) {
	groups, err := s.groupRepository.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	return s.toDomain(ctx, groups)
}

func (s *groupService) OwnedBy(ctx context.Context, userID string) ([]domain.Group, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	groups, err := s.groupRepository.ListOwnedBy(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDomain(ctx, groups)
}

func (s *groupService) ParticipatingIn(ctx context.Context, userID string) ([]domain.Group, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	groups, err := s.groupRepository.ListParticipatingIn(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDomain(ctx, groups)
}

// MembershipOf lists every group the user owns or belongs to. Clients run it
// before offering group creation; the registry itself allows several.
func (s *groupService) MembershipOf(ctx context.Context, userID string) ([]domain.Group, error) {
	owned, err := s.OwnedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	joined, err := s.ParticipatingIn(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append(owned, joined...), nil
}

func (s *groupService) AddParticipant(ctx context.Context, actingUserID, groupID, userID string) (domain.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	member, err := uuid.Parse(userID)
	if err != nil {
		return domain.Group{}, domain.NewValidationError("invalid participant id")
	}
	if actingUserID != userID && actingUserID != group.CreatedBy.String() {
		return domain.Group{}, domain.ErrNotGroupOwner
	}

	joiner, err := s.userRepository.GetUserByID(ctx, member)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Group{}, domain.ErrUserNotFound
		}
		return domain.Group{}, err
	}

	var notice *entities.Notification
	if member != group.CreatedBy {
		notice = joinNotice(group, joiner)
	}

	added, err := s.groupRepository.AddParticipant(ctx, group.ID, member, notice)
	if err != nil {
		return domain.Group{}, err
	}
	if added {
		logging.LogEvent("group_participant_added", map[string]interface{}{
			"group_id": group.ID.String(),
			"user_id":  userID,
		})
	}

	group, err = s.load(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	return s.one(ctx, group)
}

func joinNotice(group *entities.Group, joiner *entities.User) *entities.Notification {
	data, _ := json.Marshal(map[string]string{
		"type":     "group_join",
		"group_id": group.ID.String(),
		"user_id":  joiner.ID.String(),
	})
	sender := joiner.ID
	return &entities.Notification{
		UserID:   group.CreatedBy,
		Title:    "Novo participante no grupo",
		Body:     fmt.Sprintf("%s entrou no grupo %s.", joiner.Name, group.Name),
		URL:      "/groups/" + group.ID.String(),
		Data:     datatypes.JSON(data),
		SenderID: &sender,
	}
}

// RemoveParticipant never removes the owner and ignores non-members.
func (s *groupService) RemoveParticipant(ctx context.Context, actingUserID, groupID, userID string) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	member, err := uuid.Parse(userID)
	if err != nil {
		return domain.NewValidationError("invalid participant id")
	}
	if actingUserID != userID && actingUserID != group.CreatedBy.String() {
		return domain.ErrNotGroupOwner
	}
	if member == group.CreatedBy {
		return nil
	}

	_, err = s.groupRepository.RemoveParticipant(ctx, group.ID, member)
	return err
}

func (s *groupService) Update(ctx context.Context, actingUserID, groupID string, req domain.UpdateGroupRequest) (domain.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if group.CreatedBy.String() != actingUserID {
		return domain.Group{}, domain.ErrNotGroupOwner
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Group{}, domain.ErrGroupNameRequired
		}
		group.Name = name
	}
	if req.Description != nil {
		group.Description = strings.TrimSpace(*req.Description)
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return domain.Group{}, domain.ErrNegativeStock
		}
		group.Stock = *req.Stock
	}

	var participants *[]uuid.UUID
	if req.Participants != nil {
		ids, err := parseIDs(*req.Participants)
		if err != nil {
			return domain.Group{}, err
		}
		participants = &ids
	}

	if err := s.groupRepository.UpdateGroup(ctx, group, participants); err != nil {
		return domain.Group{}, err
	}

	group, err = s.load(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	return s.one(ctx, group)
}

// AdjustStock is open to every member since each one pools sacks.
func (s *groupService) AdjustStock(ctx context.Context, actingUserID, groupID string, delta int) (domain.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	actor, err := uuid.Parse(actingUserID)
	if err != nil || !group.HasMember(actor) {
		return domain.Group{}, domain.NewAuthorizationError("only group members can change its stock")
	}

	if err := s.groupRepository.AdjustStock(ctx, group.ID, delta); err != nil {
		if errors.Is(err, errStockUnderflow) {
			return domain.Group{}, domain.ErrNegativeStock
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Group{}, domain.ErrGroupNotFound
		}
		return domain.Group{}, err
	}

	group, err = s.load(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	return s.one(ctx, group)
}

// Remove deletes the group and its membership rows. Proposals and harvests
// that point at it are left alone.
func (s *groupService) Remove(ctx context.Context, actingUserID, groupID string) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy.String() != actingUserID {
		return domain.ErrNotGroupOwner
	}
	if _, err := s.groupRepository.DeleteGroup(ctx, group.ID); err != nil {
		return err
	}
	logging.LogEvent("group_deleted", map[string]interface{}{"group_id": groupID})
	return nil
}
