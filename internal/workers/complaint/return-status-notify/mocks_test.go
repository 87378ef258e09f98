package returnstatusnotify

import (
	"context"
	"testing"

	"return-notifier/internal/common/logger"
	"return-notifier/internal/models"
	"return-notifier/internal/templates"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Collaborators
// ==========================

type MockEntityStore struct {
	mock.Mock
}

func (m *MockEntityStore) FindSellerByID(ctx context.Context, id int) (*models.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

func (m *MockEntityStore) FindContractorByID(ctx context.Context, id int) (*models.Contractor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contractor), args.Error(1)
}

func (m *MockEntityStore) FindEmployeeByID(ctx context.Context, id int) (*models.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

type MockRoster struct {
	mock.Mock
}

func (m *MockRoster) EmailsPermittedFor(ctx context.Context, resellerID int, permit string) ([]string, error) {
	args := m.Called(ctx, resellerID, permit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockSenderDirectory struct {
	mock.Mock
}

func (m *MockSenderDirectory) DefaultSenderEmail(ctx context.Context, resellerID int) (string, error) {
	args := m.Called(ctx, resellerID)
	return args.String(0), args.Error(1)
}

type MockStatusNamer struct {
	mock.Mock
}

func (m *MockStatusNamer) StatusName(ctx context.Context, code int) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

type MockEmailTransport struct {
	mock.Mock
}

func (m *MockEmailTransport) SendEmail(ctx context.Context, msg models.EmailMessage, meta models.EmailMeta) error {
	args := m.Called(ctx, msg, meta)
	return args.Error(0)
}

type MockSMSTransport struct {
	mock.Mock
}

func (m *MockSMSTransport) Send(ctx context.Context, req models.SMSRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

// panickingSMS simulates a transport bug.
type panickingSMS struct{}

func (panickingSMS) Send(context.Context, models.SMSRequest) (bool, error) {
	panic("sms gateway exploded")
}

// ==========================
// Fixtures
// ==========================

const (
	testResellerID = 7
	testClientID   = 55
	testCreatorID  = 11
	testExpertID   = 12
	testSender     = "returns@shop.example"
)

type testDeps struct {
	store    *MockEntityStore
	roster   *MockRoster
	senders  *MockSenderDirectory
	statuses *MockStatusNamer
	email    *MockEmailTransport
	sms      *MockSMSTransport
	renderer *templates.Registry
}

func (d *testDeps) dependencies() ServiceDependencies {
	return ServiceDependencies{
		Entities: d.store,
		Roster:   d.roster,
		Senders:  d.senders,
		Statuses: d.statuses,
		Renderer: d.renderer,
		Email:    d.email,
		SMS:      d.sms,
	}
}

func (d *testDeps) assertExpectations(t *testing.T) {
	d.store.AssertExpectations(t)
	d.roster.AssertExpectations(t)
	d.senders.AssertExpectations(t)
	d.statuses.AssertExpectations(t)
	d.email.AssertExpectations(t)
	d.sms.AssertExpectations(t)
}

func newTestDeps(t *testing.T) *testDeps {
	registry, err := templates.Load("")
	require.NoError(t, err)

	return &testDeps{
		store:    new(MockEntityStore),
		roster:   new(MockRoster),
		senders:  new(MockSenderDirectory),
		statuses: new(MockStatusNamer),
		email:    new(MockEmailTransport),
		sms:      new(MockSMSTransport),
		renderer: registry,
	}
}

func testClient() *models.Contractor {
	return &models.Contractor{
		ID:        testClientID,
		Type:      models.ContractorTypeCustomer,
		SellerID:  testResellerID,
		Name:      "Nowak Trading",
		FirstName: "Anna",
		LastName:  "Nowak",
		Email:     "anna@client.example",
		Mobile:    "+48600100200",
	}
}

// expectEntities wires the happy-path lookups for seller, client, creator and
// expert.
func (d *testDeps) expectEntities() {
	d.store.On("FindSellerByID", mock.Anything, testResellerID).
		Return(&models.Seller{ID: testResellerID, Name: "Shop"}, nil)
	d.store.On("FindContractorByID", mock.Anything, testClientID).
		Return(testClient(), nil)
	d.store.On("FindEmployeeByID", mock.Anything, testCreatorID).
		Return(&models.Employee{ID: testCreatorID, FirstName: "Jan", LastName: "Kowalski"}, nil)
	d.store.On("FindEmployeeByID", mock.Anything, testExpertID).
		Return(&models.Employee{ID: testExpertID, Name: "Ewa Lis"}, nil)
}

func (d *testDeps) expectStatuses() {
	d.statuses.On("StatusName", mock.Anything, 1).Return("Pending", nil)
	d.statuses.On("StatusName", mock.Anything, 2).Return("Rejected", nil)
}

func changeInput() *Input {
	return &Input{
		ResellerID:        testResellerID,
		NotificationType:  NotificationTypeChange,
		ComplaintID:       900,
		ComplaintNumber:   "RET/2024/0900",
		CreatorID:         testCreatorID,
		ExpertID:          testExpertID,
		ClientID:          testClientID,
		ConsumptionID:     300,
		ConsumptionNumber: "INV/300",
		AgreementNumber:   "AGR-1",
		Date:              "2024-05-01",
		Differences:       &Differences{From: 1, To: 2},
	}
}

func newInput() *Input {
	in := changeInput()
	in.NotificationType = NotificationTypeNew
	return in
}

func newTestService(t *testing.T, d *testDeps, cfg *Config) *Service {
	deps := d.dependencies()
	deps.Logger = logger.NewTestLogger(t)
	return NewService(deps, cfg)
}
