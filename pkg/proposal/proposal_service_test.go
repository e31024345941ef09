package proposal

import (
	"context"
	"testing"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/testutil"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/group"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	svc    ProposalService
	buyer  *entities.User
	owner  *entities.User
	member *entities.User
	group  *entities.Group
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewTestDB(t)
	f := &fixture{
		db:     db,
		svc:    NewProposalService(NewProposalRepository(db), group.NewGroupRepository(db), user.NewUserRepository(db)),
		buyer:  testutil.CreateUser(t, db, "rita", domain.RoleRepresentative),
		owner:  testutil.CreateUser(t, db, "ana", domain.RoleProducer),
		member: testutil.CreateUser(t, db, "bruno", domain.RoleProducer),
	}
	f.group = testutil.CreateGroup(t, db, "Sul", f.owner, f.member)
	return f
}

func (f *fixture) toGroup(t *testing.T) domain.SentProposal {
	t.Helper()
	p, err := f.svc.Create(context.Background(), f.buyer.ID.String(), domain.CreateProposalRequest{
		PricePerSack: 8.50,
		Quantity:     1000,
		GroupID:      f.group.ID.String(),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) toProducer(t *testing.T, producer *entities.User) domain.SentProposal {
	t.Helper()
	p, err := f.svc.Create(context.Background(), f.buyer.ID.String(), domain.CreateProposalRequest{
		PricePerSack: 9,
		Quantity:     10,
		UserID:       producer.ID.String(),
	})
	require.NoError(t, err)
	return p
}

func TestCreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.buyer.ID.String()

	cases := []struct {
		name string
		req  domain.CreateProposalRequest
		want error
	}{
		{"zero price", domain.CreateProposalRequest{PricePerSack: 0, Quantity: 1, UserID: f.owner.ID.String()}, domain.ErrInvalidPrice},
		{"zero quantity", domain.CreateProposalRequest{PricePerSack: 1, Quantity: 0, UserID: f.owner.ID.String()}, domain.ErrInvalidProposalQty},
		{"no target", domain.CreateProposalRequest{PricePerSack: 1, Quantity: 1}, domain.ErrInvalidProposalTarget},
		{"both targets", domain.CreateProposalRequest{PricePerSack: 1, Quantity: 1, UserID: f.owner.ID.String(), GroupID: f.group.ID.String()}, domain.ErrInvalidProposalTarget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, buyer, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.svc.Create(ctx, f.owner.ID.String(), domain.CreateProposalRequest{PricePerSack: 1, Quantity: 1, UserID: f.member.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotRepresentative)

	_, err = f.svc.Create(ctx, buyer, domain.CreateProposalRequest{PricePerSack: 1, Quantity: 1, GroupID: "0b8e0d7e-6d2b-4a4f-8d7e-1f3f1e2d3c4b"})
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestCreateSnapshotsBuyerContact(t *testing.T) {
	f := newFixture(t)
	p := f.toProducer(t, f.owner)

	require.NoError(t, f.db.Model(&entities.User{}).Where("id = ?", f.buyer.ID).Update("phone", "000").Error)

	received, err := f.svc.ReceivedByProducer(context.Background(), f.owner.ID.String())
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, p.ID, received[0].ID)
	assert.Equal(t, f.buyer.Phone, received[0].PhoneBuyer)
	assert.Equal(t, f.buyer.Email, received[0].EmailBuyer)
}

func TestDirectProposalNotifiesProducer(t *testing.T) {
	f := newFixture(t)
	p := f.toProducer(t, f.owner)

	var list []entities.Notification
	require.NoError(t, f.db.Where("user_id = ?", f.owner.ID).Find(&list).Error)
	require.Len(t, list, 1)
	assert.Contains(t, string(list[0].Data), p.ID)
}

func TestGroupProposalContactOnlyForOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.toGroup(t)

	ownerView, err := f.svc.ReceivedByProducer(ctx, f.owner.ID.String())
	require.NoError(t, err)
	require.Len(t, ownerView, 1)
	assert.Equal(t, p.ID, ownerView[0].ID)
	assert.True(t, ownerView[0].CanSeeContact)
	assert.Equal(t, f.buyer.Phone, ownerView[0].PhoneBuyer)
	assert.Equal(t, f.buyer.Email, ownerView[0].EmailBuyer)
	assert.Equal(t, 8.50, ownerView[0].PricePerSack)

	memberView, err := f.svc.ReceivedByProducer(ctx, f.member.ID.String())
	require.NoError(t, err)
	require.Len(t, memberView, 1)
	assert.False(t, memberView[0].CanSeeContact)
	assert.Empty(t, memberView[0].PhoneBuyer)
	assert.Empty(t, memberView[0].EmailBuyer)
	assert.Equal(t, domain.MessageGroupContactNotice, memberView[0].ContactNotice)
	assert.Equal(t, 1000, memberView[0].Quantity)
	require.NotNil(t, memberView[0].Buyer)
	assert.Equal(t, f.buyer.ID.String(), memberView[0].Buyer.ID)
	assert.Equal(t, f.buyer.Name, memberView[0].Buyer.Name)
	assert.Empty(t, memberView[0].Buyer.Email)
	assert.Empty(t, memberView[0].Buyer.Phone)

	require.NotNil(t, ownerView[0].Buyer)
	assert.Equal(t, f.buyer.Email, ownerView[0].Buyer.Email)
}

func TestCanSeeContact(t *testing.T) {
	f := newFixture(t)
	outsider := testutil.CreateUser(t, f.db, "carla", domain.RoleProducer)
	direct := &entities.Proposal{UserID: &f.owner.ID}
	viaGroup := &entities.Proposal{GroupID: &f.group.ID}

	assert.True(t, domain.CanSeeContact(direct, nil, f.owner.ID))
	assert.False(t, domain.CanSeeContact(direct, nil, outsider.ID))

	assert.True(t, domain.CanSeeContact(viaGroup, f.group, f.owner.ID))
	assert.False(t, domain.CanSeeContact(viaGroup, f.group, f.member.ID))
	assert.False(t, domain.CanSeeContact(viaGroup, nil, f.owner.ID))
}

func TestGroupProposalAppearsOncePerMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.toGroup(t)
	// the member also owns a second group, overlapping membership
	testutil.CreateGroup(t, f.db, "Norte", f.member, f.owner)

	for _, u := range []*entities.User{f.owner, f.member} {
		got, err := f.svc.ReceivedByProducer(ctx, u.ID.String())
		require.NoError(t, err)
		count := 0
		for _, r := range got {
			if r.ID == p.ID {
				count++
			}
		}
		assert.Equal(t, 1, count, u.Name)
	}
}

func TestPartitionsAndUnreadCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.toGroup(t)
	direct := f.toProducer(t, f.owner)

	directs, err := f.svc.DirectByProducer(ctx, f.owner.ID.String())
	require.NoError(t, err)
	require.Len(t, directs, 1)
	assert.Equal(t, direct.ID, directs[0].ID)

	routed, err := f.svc.GroupRoutedByProducer(ctx, f.owner.ID.String())
	require.NoError(t, err)
	require.Len(t, routed, 1)
	assert.Equal(t, domain.OriginGroup, routed[0].Origin)

	counts, err := f.svc.UnreadCounts(ctx, f.owner.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.UnreadCounts{Total: 2, Direct: 1, Group: 1}, counts)

	require.NoError(t, f.svc.MarkViewed(ctx, direct.ID, f.owner.ID.String()))
	counts, err = f.svc.UnreadCounts(ctx, f.owner.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.UnreadCounts{Total: 1, Direct: 0, Group: 1}, counts)
}

func TestMarkViewedIsIdempotentAndGated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.toGroup(t)

	err := f.svc.MarkViewed(ctx, p.ID, f.member.ID.String())
	assert.ErrorIs(t, err, domain.ErrProposalForbidden)

	require.NoError(t, f.svc.MarkViewed(ctx, p.ID, f.owner.ID.String()))
	require.NoError(t, f.svc.MarkViewed(ctx, p.ID, f.owner.ID.String()))

	var stored entities.Proposal
	require.NoError(t, f.db.First(&stored, "id = ?", p.ID).Error)
	assert.True(t, stored.Viewed)
}

func TestDeleteByBuyerOrOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.toGroup(t)
	second := f.toGroup(t)

	assert.ErrorIs(t, f.svc.Delete(ctx, first.ID, f.member.ID.String()), domain.ErrProposalForbidden)
	require.NoError(t, f.svc.Delete(ctx, first.ID, f.owner.ID.String()))
	require.NoError(t, f.svc.Delete(ctx, second.ID, f.buyer.ID.String()))
	assert.ErrorIs(t, f.svc.Delete(ctx, second.ID, f.buyer.ID.String()), domain.ErrProposalNotFound)
}

func TestDeletedGroupResolvesToNil(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.toGroup(t)

	require.NoError(t, group.NewGroupService(group.NewGroupRepository(f.db), user.NewUserRepository(f.db)).
		Remove(ctx, f.owner.ID.String(), f.group.ID.String()))

	sent, err := f.svc.SentByRepresentative(ctx, f.buyer.ID.String())
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, p.ID, sent[0].ID)
	assert.Nil(t, sent[0].Group)
	assert.Nil(t, sent[0].Producer)

	received, err := f.svc.ReceivedByProducer(ctx, f.owner.ID.String())
	require.NoError(t, err)
	assert.Empty(t, received)

	assert.ErrorIs(t, f.svc.MarkViewed(ctx, p.ID, f.owner.ID.String()), domain.ErrProposalForbidden)
}

func TestSentIsNotRedacted(t *testing.T) {
	f := newFixture(t)
	f.toGroup(t)
	f.toProducer(t, f.member)

	sent, err := f.svc.SentByRepresentative(context.Background(), f.buyer.ID.String())
	require.NoError(t, err)
	require.Len(t, sent, 2)
	for _, s := range sent {
		assert.Equal(t, f.buyer.Email, s.EmailBuyer)
		if s.Origin == domain.OriginDirect {
			require.NotNil(t, s.Producer)
			assert.Equal(t, f.member.ID.String(), s.Producer.ID)
			continue
		}
		require.NotNil(t, s.Group)
		assert.Equal(t, "Sul", s.Group.Name)
	}
}
