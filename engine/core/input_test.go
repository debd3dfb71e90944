package core

import "testing"

func resetInput(t *testing.T) {
	t.Helper()
	if err := InputInitialize(); err != nil {
		t.Fatalf("InputInitialize failed: %v", err)
	}
	// Clear any state left behind by other tests.
	inputState.KeyboardCurrent = KeyboardState{}
	inputState.MouseCurrent = MouseState{}
	inputState.ScrollDelta = 0
	InputUpdate(0)
}

func TestInputKeyPressedThisFrameEdge(t *testing.T) {
	resetInput(t)

	InputProcessKey(KEY_F1, true)
	if !InputIsKeyPressedThisFrame(KEY_F1) {
		t.Error("key should read as pressed this frame right after the press")
	}

	InputUpdate(0)
	if InputIsKeyPressedThisFrame(KEY_F1) {
		t.Error("holding a key should not retrigger the edge on the next frame")
	}
	if !InputIsKeyDown(KEY_F1) {
		t.Error("held key should still be down")
	}

	InputProcessKey(KEY_F1, false)
	if InputIsKeyDown(KEY_F1) {
		t.Error("released key should not be down")
	}
}

func TestInputMouseDelta(t *testing.T) {
	resetInput(t)

	InputProcessMouseMove(100, 50)
	InputUpdate(0)
	InputProcessMouseMove(110, 45)

	dx, dy := InputGetMouseDelta()
	if dx != 10 || dy != -5 {
		t.Errorf("mouse delta = (%d, %d), want (10, -5)", dx, dy)
	}
}

func TestInputScrollAccumulatesAndClears(t *testing.T) {
	resetInput(t)

	InputProcessMouseWheel(1)
	InputProcessMouseWheel(0.5)
	if got := InputGetScrollDelta(); got != 1.5 {
		t.Errorf("scroll delta = %v, want 1.5 (accumulated)", got)
	}

	InputUpdate(0)
	if got := InputGetScrollDelta(); got != 0 {
		t.Errorf("scroll delta after frame end = %v, want 0", got)
	}
}

func TestInputButtonState(t *testing.T) {
	resetInput(t)

	InputProcessButton(BUTTON_LEFT, true)
	if !InputIsButtonDown(BUTTON_LEFT) {
		t.Error("left button should be down after the press")
	}
	if InputWasButtonDown(BUTTON_LEFT) {
		t.Error("previous frame state should not see the press yet")
	}

	InputUpdate(0)
	if !InputWasButtonDown(BUTTON_LEFT) {
		t.Error("previous frame state should see the press after the frame end")
	}
}
