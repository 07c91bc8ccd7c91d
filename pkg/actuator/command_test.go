package actuator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_Clamp(t *testing.T) {
	tests := []struct {
		name         string
		motor, steer float64
		wantM, wantS float64
	}{
		{"within limits", 50, -3, 50, -3},
		{"motor above", 250, 0, MaxMotor, 0},
		{"motor below", -250, 0, -MaxMotor, 0},
		{"steering above", 0, 40, 0, MaxSteering},
		{"steering below", 0, -40, 0, -MaxSteering},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Drive(tt.motor, tt.steer)
			assert.Equal(t, tt.wantM, c.Motor())
			assert.Equal(t, tt.wantS, c.Steering())
		})
	}
}

func TestCommand_WrittenTracking(t *testing.T) {
	c := New()
	assert.Equal(t, FieldNone, c.Written())

	c.SetArm(true)
	assert.True(t, c.Covers(FieldArm))
	assert.False(t, c.Covers(FieldDrive))

	c.SetMotor(10)
	c.SetSteering(1)
	assert.True(t, c.Covers(FieldDrive|FieldArm))
	assert.False(t, c.Covers(FieldAll))

	c.SetFlag(FlagBrake, true)
	assert.True(t, c.Covers(FieldAll))
}

func TestCommand_FreshKeepsValues(t *testing.T) {
	c := Drive(40, 2)
	c.SetArm(true)

	f := c.Fresh()
	assert.Equal(t, FieldNone, f.Written())
	assert.Equal(t, 40.0, f.Motor())
	assert.Equal(t, 2.0, f.Steering())
	assert.True(t, f.Arm())

	// The source is a value and is untouched.
	assert.True(t, c.Covers(FieldDrive|FieldArm))
}

func TestCommand_Overlay(t *testing.T) {
	base := Drive(30, 5)
	base.SetArm(true)

	over := Drive(-20, -7)
	over.SetArm(false)

	got := base.Fresh()
	got.Overlay(over, FieldMotor)

	assert.Equal(t, -20.0, got.Motor(), "overlaid field")
	assert.Equal(t, 5.0, got.Steering(), "untouched field")
	assert.True(t, got.Arm(), "untouched field")
	assert.Equal(t, FieldMotor, got.Written())

	got.Overlay(over, FieldAll)
	assert.Equal(t, over.Motor(), got.Motor())
	assert.Equal(t, over.Steering(), got.Steering())
	assert.False(t, got.Arm())
}

func TestCommand_Flags(t *testing.T) {
	var c Command
	c.SetFlag(FlagBrake, true)
	c.SetFlag(FlagBeacon, true)
	assert.True(t, c.Flag(FlagBrake))
	assert.True(t, c.Flag(FlagBeacon))

	c.SetFlag(FlagBrake, false)
	assert.False(t, c.Flag(FlagBrake))
	assert.True(t, c.Flag(FlagBeacon))
}

func TestField_String(t *testing.T) {
	assert.Equal(t, "none", FieldNone.String())
	assert.Equal(t, "motor|steering", FieldDrive.String())
	assert.Equal(t, "motor|steering|arm|flags", FieldAll.String())
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want Field
	}{
		{"motor", FieldMotor},
		{"Steering", FieldSteering},
		{"motor|arm", FieldMotor | FieldArm},
		{"drive", FieldDrive},
		{"all", FieldAll},
		{"none", FieldNone},
	}
	for _, tt := range tests {
		got, err := ParseField(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		if tt.want != FieldNone {
			again, err := ParseField(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, again)
		}
	}

	_, err := ParseField("wheels")
	assert.Error(t, err)
}

func TestCommand_JSON(t *testing.T) {
	c := Drive(12.5, -1)
	c.SetArm(true)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"motor":12.5,"steering":-1,"arm":true}`, string(data))

	var back Command
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c.Motor(), back.Motor())
	assert.Equal(t, c.Steering(), back.Steering())
	assert.Equal(t, c.Arm(), back.Arm())
}
