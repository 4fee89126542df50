package reinstate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deportbot/internal/config"
	"deportbot/internal/ledger"
	"deportbot/internal/reinstate"
)

const (
	mentorChannel  = "CMENTOR"
	holdingChannel = "CMEXICO"
)

type fakeRoles struct {
	mentors    []string
	immigrants []string
	err        error
}

func (f *fakeRoles) Mentors(context.Context) ([]string, error)    { return f.mentors, f.err }
func (f *fakeRoles) Immigrants(context.Context) ([]string, error) { return f.immigrants, f.err }

type fakeStore struct {
	records map[string][]string
}

func (f *fakeStore) Record(_ context.Context, user string, channels []string) error {
	if f.records == nil {
		f.records = make(map[string][]string)
	}
	f.records[user] = channels
	return nil
}

func (f *fakeStore) RestoreChannels(_ context.Context, user string) ([]string, error) {
	channels, ok := f.records[user]
	if !ok {
		return nil, ledger.ErrRecordNotFound
	}
	return channels, nil
}

func (f *fakeStore) Get(_ context.Context, user string) (*ledger.RemovalRecord, error) {
	channels, ok := f.records[user]
	if !ok {
		return nil, ledger.ErrRecordNotFound
	}
	return &ledger.RemovalRecord{User: user, Channels: channels}, nil
}

type call struct{ channel, user string }

type fakeSlack struct {
	inviteErrs map[string]error

	invites    []call
	kicks      []call
	posts      []string
	ephemerals []call
	views      []slack.ModalViewRequest
}

func (f *fakeSlack) InviteUsersToConversationContext(_ context.Context, channelID string, users ...string) (*slack.Channel, error) {
	for _, u := range users {
		f.invites = append(f.invites, call{channel: channelID, user: u})
	}
	return nil, f.inviteErrs[channelID]
}

func (f *fakeSlack) KickUserFromConversationContext(_ context.Context, channelID, user string) error {
	f.kicks = append(f.kicks, call{channel: channelID, user: user})
	return nil
}

func (f *fakeSlack) PostEphemeralContext(_ context.Context, channelID, userID string, _ ...slack.MsgOption) (string, error) {
	f.ephemerals = append(f.ephemerals, call{channel: channelID, user: userID})
	return "", nil
}

func (f *fakeSlack) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	f.posts = append(f.posts, channelID)
	return channelID, "111.222", nil
}

func (f *fakeSlack) OpenViewContext(_ context.Context, _ string, view slack.ModalViewRequest) (*slack.ViewResponse, error) {
	f.views = append(f.views, view)
	return &slack.ViewResponse{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		MentorChannel:  mentorChannel,
		HoldingChannel: holdingChannel,
	}
}

func newService(api *fakeSlack, roles *fakeRoles, store *fakeStore) *reinstate.Service {
	return reinstate.NewService(api, api, roles, store, testConfig(), zap.NewNop())
}

func TestValidateRequestRejectsNonMentor(t *testing.T) {
	svc := newService(&fakeSlack{}, &fakeRoles{mentors: []string{"UMENTOR"}}, &fakeStore{})

	_, err := svc.ValidateRequest(context.Background(), "UOUTSIDER", holdingChannel, "<@UTARGET1>")
	assert.ErrorIs(t, err, reinstate.ErrNotMentor)
}

func TestValidateRequestRejectsWrongChannel(t *testing.T) {
	svc := newService(&fakeSlack{}, &fakeRoles{mentors: []string{"UMENTOR"}}, &fakeStore{})

	_, err := svc.ValidateRequest(context.Background(), "UMENTOR", "CELSEWHERE", "<@UTARGET1>")
	assert.ErrorIs(t, err, reinstate.ErrWrongChannel)
}

func TestValidateRequestRejectsEmptyTargets(t *testing.T) {
	svc := newService(&fakeSlack{}, &fakeRoles{mentors: []string{"UMENTOR"}}, &fakeStore{})

	_, err := svc.ValidateRequest(context.Background(), "UMENTOR", holdingChannel, "nobody")
	assert.ErrorIs(t, err, reinstate.ErrNoTarget)
}

func TestValidateRequestRejectsMentorTargets(t *testing.T) {
	roles := &fakeRoles{mentors: []string{"UMENTOR", "UMENTOR2"}, immigrants: []string{"UMENTOR2"}}
	svc := newService(&fakeSlack{}, roles, &fakeStore{})

	_, err := svc.ValidateRequest(context.Background(), "UMENTOR", holdingChannel, "<@UMENTOR2>")

	var mentorTargets *reinstate.MentorTargetsError
	require.ErrorAs(t, err, &mentorTargets)
	assert.Equal(t, []string{"UMENTOR2"}, mentorTargets.Targets)
}

func TestValidateRequestRejectsNonImmigrants(t *testing.T) {
	roles := &fakeRoles{mentors: []string{"UMENTOR"}, immigrants: []string{"UIN"}}
	svc := newService(&fakeSlack{}, roles, &fakeStore{})

	_, err := svc.ValidateRequest(context.Background(), "UMENTOR", holdingChannel, "<@UIN> <@UOUT>")

	var outsiders *reinstate.NotImmigrantsError
	require.ErrorAs(t, err, &outsiders)
	assert.Equal(t, []string{"UOUT"}, outsiders.Targets)
}

func TestValidateRequestUsesFirstTargetOnly(t *testing.T) {
	roles := &fakeRoles{mentors: []string{"UMENTOR"}, immigrants: []string{"UAAA", "UBBB"}}
	svc := newService(&fakeSlack{}, roles, &fakeStore{})

	target, err := svc.ValidateRequest(context.Background(), "UMENTOR", holdingChannel, "<@UAAA> <@UBBB>")
	require.NoError(t, err)
	assert.Equal(t, "UAAA", target)
}

func TestExecuteRestoresRecordedChannels(t *testing.T) {
	api := &fakeSlack{}
	store := &fakeStore{records: map[string][]string{"UTARGET1": {"CX", "CY"}}}
	svc := newService(api, &fakeRoles{}, store)

	channels, err := svc.Execute(context.Background(), "UTARGET1")
	require.NoError(t, err)

	assert.Equal(t, []string{"CX", "CY"}, channels)
	assert.Equal(t, []call{
		{channel: "CX", user: "UTARGET1"},
		{channel: "CY", user: "UTARGET1"},
	}, api.invites)
	assert.Equal(t, []call{{channel: holdingChannel, user: "UTARGET1"}}, api.kicks)
}

func TestExecuteContinuesPastInviteFailures(t *testing.T) {
	api := &fakeSlack{inviteErrs: map[string]error{"CX": errors.New("is_archived")}}
	store := &fakeStore{records: map[string][]string{"UTARGET1": {"CX", "CY"}}}
	svc := newService(api, &fakeRoles{}, store)

	channels, err := svc.Execute(context.Background(), "UTARGET1")
	require.NoError(t, err)

	// Exactly one re-add attempt per recorded channel, then exactly one
	// removal from the holding channel, failures notwithstanding.
	assert.Len(t, api.invites, 2)
	assert.Len(t, api.kicks, 1)
	assert.Equal(t, []string{"CX", "CY"}, channels)
}

func TestExecuteFailsWithoutLedgerRecord(t *testing.T) {
	api := &fakeSlack{}
	svc := newService(api, &fakeRoles{}, &fakeStore{})

	_, err := svc.Execute(context.Background(), "UNEVER")
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrRecordNotFound)
	assert.Empty(t, api.invites)
	assert.Empty(t, api.kicks)
}
