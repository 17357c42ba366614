package authz

import "testing"

func TestRolePolicy(t *testing.T) {
	policy := NewRolePolicy("admin", "recruiter")

	if !policy.CanAccess("user-1", "member", "user-1") {
		t.Fatal("owners must access their own resources")
	}
	if policy.CanAccess("user-2", "member", "user-1") {
		t.Fatal("members must not access others' resources")
	}
	if !policy.CanAccess("user-2", "admin", "user-1") {
		t.Fatal("admins access everything")
	}
	if !policy.CanAccess("user-2", "recruiter", "user-1") {
		t.Fatal("recruiters access everything")
	}
	if policy.CanAccess("", "admin", "user-1") {
		t.Fatal("empty requester is always denied")
	}
}
