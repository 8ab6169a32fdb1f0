package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOktaRequest(t *testing.T) {
	before := testutil.ToFloat64(OktaRequestsTotal.WithLabelValues("list_user_groups", "ok"))
	RecordOktaRequest("list_user_groups", "ok", 20*time.Millisecond)
	after := testutil.ToFloat64(OktaRequestsTotal.WithLabelValues("list_user_groups", "ok"))
	assert.Equal(t, before+1, after)
}

func TestRecordRoleEditAndDenial(t *testing.T) {
	before := testutil.ToFloat64(RoleEditsTotal.WithLabelValues("ADD", "applied"))
	RecordRoleEdit("ADD", "applied")
	assert.Equal(t, before+1, testutil.ToFloat64(RoleEditsTotal.WithLabelValues("ADD", "applied")))

	before = testutil.ToFloat64(AuthzDenialsTotal.WithLabelValues("policy"))
	RecordAuthzDenial("policy")
	assert.Equal(t, before+1, testutil.ToFloat64(AuthzDenialsTotal.WithLabelValues("policy")))
}
