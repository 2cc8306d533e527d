package auth

import "testing"

func TestPolicyMatrix(t *testing.T) {
	cases := []struct {
		role    string
		op      Operation
		allowed bool
	}{
		{RoleLecturer, OpRequestCreate, true},
		{RoleLecturer, OpRequestRead, true},
		{RoleLecturer, OpRequestListMine, true},
		{RoleLecturer, OpRequestDecide, false},
		{RoleLecturer, OpRequestIssue, false},
		{RoleLecturer, OpItemRead, true},
		{RoleLecturer, OpItemWrite, false},

		{RoleAdmin, OpRequestDecide, true},
		{RoleAdmin, OpRequestListAll, true},
		{RoleAdmin, OpRequestIssue, false},
		{RoleAdmin, OpRequestCreate, false},
		{RoleAdmin, OpItemWrite, true},
		{RoleAdmin, OpDocumentWrite, true},
		{RoleAdmin, OpAccountCreate, true},

		{RoleStorekeeper, OpRequestIssue, true},
		{RoleStorekeeper, OpRequestReturn, true},
		{RoleStorekeeper, OpRequestQueues, true},
		{RoleStorekeeper, OpRequestDecide, false},
		{RoleStorekeeper, OpItemWrite, true},
		{RoleStorekeeper, OpDocumentWrite, false},
	}

	for _, tc := range cases {
		if got := Allowed(tc.role, tc.op); got != tc.allowed {
			t.Errorf("Allowed(%s, %s) = %v, want %v", tc.role, tc.op, got, tc.allowed)
		}
	}
}

func TestPolicyUnknowns(t *testing.T) {
	if Allowed("", OpRequestCreate) {
		t.Error("empty role must be denied")
	}
	if Allowed("root", OpRequestDecide) {
		t.Error("unknown role must be denied")
	}
	if Allowed(RoleAdmin, Operation("nonexistent.op")) {
		t.Error("unknown operation must be denied")
	}
}
