package core

import "testing"

func TestModeAxes(t *testing.T) {
	testCases := []struct {
		mode  Mode
		role  Role
		dir   Direction
		width Width
		name  string
	}{
		{ModeSlaveTransmit16, RoleSlave, DirTransmit, Width16, "slave-transmit-16"},
		{ModeMasterTransmit16, RoleMaster, DirTransmit, Width16, "master-transmit-16"},
		{ModeSlaveReceive16, RoleSlave, DirReceive, Width16, "slave-receive-16"},
		{ModeMasterReceive16, RoleMaster, DirReceive, Width16, "master-receive-16"},
		{ModeSlaveTransmit32, RoleSlave, DirTransmit, Width32, "slave-transmit-32"},
		{ModeMasterTransmit32, RoleMaster, DirTransmit, Width32, "master-transmit-32"},
		{ModeSlaveReceive32, RoleSlave, DirReceive, Width32, "slave-receive-32"},
		{ModeMasterReceive32, RoleMaster, DirReceive, Width32, "master-receive-32"},
	}

	for _, tc := range testCases {
		if got := NewMode(tc.role, tc.dir, tc.width); got != tc.mode {
			t.Errorf("NewMode(%v, %v, %d): expected %v, got %v", tc.role, tc.dir, tc.width, tc.mode, got)
		}
		if tc.mode.Role() != tc.role || tc.mode.Direction() != tc.dir || tc.mode.Width() != tc.width {
			t.Errorf("%v: axes %v/%v/%d", tc.mode, tc.mode.Role(), tc.mode.Direction(), tc.mode.Width())
		}
		if tc.mode.String() != tc.name {
			t.Errorf("Expected name %s, got %s", tc.name, tc.mode.String())
		}
	}

	if modeNone.Valid() || Mode(9).Valid() {
		t.Error("Out of range modes must not be valid")
	}
	if modeNone.String() != "unbound" {
		t.Errorf("Expected unbound, got %s", modeNone.String())
	}
}

func TestStatusBits(t *testing.T) {
	s := StatusTXE | StatusCHSIDE | StatusFRE
	if !s.TXE() || s.RXNE() || !s.FRE() || s.UDR() || s.OVR() {
		t.Errorf("Unexpected flag decode for 0x%04X", uint16(s))
	}
	if s.Channel() != ChannelRight {
		t.Errorf("Expected right channel, got %v", s.Channel())
	}
	if Status(0).Channel() != ChannelLeft {
		t.Error("Expected left channel for CHSIDE clear")
	}
}
