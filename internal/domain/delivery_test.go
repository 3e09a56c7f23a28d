package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kindNamer struct{}

func (kindNamer) Operational(o OperationalItem) string { return "ops:" + o.Procedure }
func (kindNamer) Development(d DevelopmentItem) string { return "dev:" + d.Branch }

func TestDeliveryItem_DecodeOperational(t *testing.T) {
	raw := `{"id":7,"deliveryId":3,"title":"Rotate certs","status":"DONE",
		"flowType":"OPERATIONAL","procedure":"run playbook","environment":"prod","executedAt":"2025-03-04"}`

	var item DeliveryItem
	require.NoError(t, json.Unmarshal([]byte(raw), &item))

	assert.Equal(t, int64(7), item.ID)
	assert.Equal(t, ItemDone, item.Status)
	assert.Equal(t, FlowOperational, item.Kind())
	ops, ok := item.Detail.(OperationalItem)
	require.True(t, ok)
	assert.Equal(t, "prod", ops.Environment)
	require.NotNil(t, ops.ExecutedAt)
	assert.Equal(t, "2025-03-04", ops.ExecutedAt.String())
}

func TestDeliveryItem_DecodeDevelopment(t *testing.T) {
	raw := `{"id":8,"title":"Login page","flowType":"DEVELOPMENT",
		"repository":"web","branch":"feature/login","pullRequest":"https://git.example.com/pr/12"}`

	var item DeliveryItem
	require.NoError(t, json.Unmarshal([]byte(raw), &item))

	dev, ok := item.Detail.(DevelopmentItem)
	require.True(t, ok)
	assert.Equal(t, "feature/login", dev.Branch)
	assert.Equal(t, "https://git.example.com/pr/12", dev.PullRequestURL)
}

func TestDeliveryItem_UnknownFlowTypeKeepsItem(t *testing.T) {
	var item DeliveryItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"Spike","flowType":"RESEARCH"}`), &item))
	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, "Spike", item.Title)
	assert.Nil(t, item.Detail)
	assert.Equal(t, FlowType("RESEARCH"), item.UnknownFlow)
	assert.Equal(t, FlowType(""), item.Kind())

	out, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"flowType":"RESEARCH"`)
}

func TestDelivery_OneUnknownItemDoesNotHideTheRest(t *testing.T) {
	var d Delivery
	err := json.Unmarshal([]byte(`{"id":9,"title":"Release","items":[
		{"id":1,"title":"Deploy","flowType":"OPERATIONAL","procedure":"helm upgrade"},
		{"id":2,"title":"Mystery"},
		{"id":3,"title":"API","flowType":"DEVELOPMENT","repository":"api"}]}`), &d)
	require.NoError(t, err)
	require.Len(t, d.Items, 3)
	assert.Equal(t, FlowOperational, d.Items[0].Kind())
	assert.Nil(t, d.Items[1].Detail)
	assert.Equal(t, FlowDevelopment, d.Items[2].Kind())
}

func TestDeliveryItem_EncodesFlatWireForm(t *testing.T) {
	item := DeliveryItem{
		ID:        4,
		Title:     "API",
		UpdatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Detail:    DevelopmentItem{Repository: "api", Branch: "main"},
	}
	data, err := json.Marshal(item)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "DEVELOPMENT", fields["flowType"])
	assert.Equal(t, "main", fields["branch"])
	assert.NotContains(t, fields, "procedure")
}

func TestVisitItem_DispatchesByKind(t *testing.T) {
	assert.Equal(t, "ops:restart", VisitItem[string](OperationalItem{Procedure: "restart"}, kindNamer{}))
	assert.Equal(t, "dev:fix-1", VisitItem[string](DevelopmentItem{Branch: "fix-1"}, kindNamer{}))
	assert.Equal(t, "dev:ptr", VisitItem[string](&DevelopmentItem{Branch: "ptr"}, kindNamer{}))
}

func TestVisitItem_NilPanics(t *testing.T) {
	assert.Panics(t, func() { VisitItem[string](nil, kindNamer{}) })
}

func TestDeliveryGroup_Mismatch(t *testing.T) {
	g := DeliveryGroup{Deliveries: []Delivery{{ID: 1}}, TotalDeliveries: 1}
	assert.False(t, g.Mismatch())

	g.TotalDeliveries = 3
	assert.True(t, g.Mismatch())
}

func TestDeliveryGroup_Latest(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	g := DeliveryGroup{Deliveries: []Delivery{
		{ID: 1, CreatedAt: base},
		{ID: 2, CreatedAt: base.Add(48 * time.Hour)},
		{ID: 3, CreatedAt: base.Add(24 * time.Hour)},
	}}
	latest, ok := g.Latest()
	require.True(t, ok)
	assert.Equal(t, int64(2), latest.ID)

	_, ok = DeliveryGroup{}.Latest()
	assert.False(t, ok)
}

func TestItemPatch(t *testing.T) {
	assert.True(t, ItemPatch{}.Empty())

	branch := "feature/x"
	p := ItemPatch{Branch: &branch}
	assert.False(t, p.Empty())
	assert.True(t, p.DevOnly())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"branch":"feature/x"}`, string(data))
}
