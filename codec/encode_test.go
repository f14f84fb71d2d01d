// encode_test.go
/*
fixmsg — FIX protocol message toolkit
Copyright (C) 2025 Edgewater Markets

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/
package codec

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/edgewater/fixmsg/message"
	"bitbucket.org/edgewater/fixmsg/values"
)

func TestEncodeRecomputesTrailer(t *testing.T) {
	c := New(WithSeparator('|'))

	// Stale body length (12) and checksum (000) on the way in.
	m, err := c.Decode([]byte("8=FIX.4.2|9=12|35=A|10=000|"))
	require.NoError(t, err)

	out, err := c.Encode(m)
	require.NoError(t, err)

	prefix := "8=FIX.4.2|9=5|35=A|"
	want := prefix + fmt.Sprintf("10=%03d|", byteSum([]byte(prefix))%256)
	assert.Equal(t, want, string(out))
}

func TestEncodeRawTrailerRoundTripsBytes(t *testing.T) {
	in := []byte("8=FIX.4.2|9=12|35=A|10=000|")

	c := New(WithSeparator('|'), WithRawTrailer())
	m, err := c.Decode(in)
	require.NoError(t, err)

	out, err := c.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, in, out, "raw trailer keeps stale 9 and 10 byte for byte")
}

func TestEncodeExpandsGroups(t *testing.T) {
	e1, e2 := message.New(), message.New()
	e1.Set(11, "A")
	e1.Set(38, "10")
	e2.Set(11, "B")
	e2.Set(38, "20")

	m := message.New()
	m.Set(35, "E")
	m.SetGroup(message.GroupFactory{CountTag: 73, FirstTag: 11}.Build(e1, e2))

	c := New(WithSeparator('|'), WithRawTrailer())
	out, err := c.Encode(m)
	require.NoError(t, err)

	assert.Equal(t, "35=E|73=2|11=A|38=10|11=B|38=20|", string(out))
}

func TestEncodeEmptyGroup(t *testing.T) {
	m := message.New()
	m.Set(35, "E")
	m.SetGroup(message.NewGroup(73, 11))

	c := New(WithSeparator('|'), WithRawTrailer())
	out, err := c.Encode(m)
	require.NoError(t, err)

	assert.Equal(t, "35=E|73=0|", string(out))
}

func TestEncodeGroupCountTracksEntries(t *testing.T) {
	c := New(WithSeparator('|'), WithSpecification(orderListSpec()))

	m, err := c.Decode([]byte("35=E|73=2|11=A|38=10|11=B|38=20|"))
	require.NoError(t, err)

	g, err := m.Group(73)
	require.NoError(t, err)

	extra := message.New()
	extra.Set(11, "C")
	extra.Set(38, "30")
	g.Append(extra)

	raw := New(WithSeparator('|'), WithRawTrailer())
	out, err := raw.Encode(m)
	require.NoError(t, err)

	assert.Equal(t, "35=E|73=3|11=A|38=10|11=B|38=20|11=C|38=30|", string(out),
		"counting tag reflects actual entries, not the decoded value")
}

func TestEncodeAfterEntryReorder(t *testing.T) {
	c := New(WithSeparator('|'), WithSpecification(orderListSpec()))

	original, err := c.Decode([]byte("8=FIX.4.2|35=E|73=2|11=A|38=10|11=B|38=20|10=000|"))
	require.NoError(t, err)

	reordered := original.Copy()
	g, err := reordered.Group(73)
	require.NoError(t, err)
	g.Swap(0, 1)

	out, err := c.Encode(reordered)
	require.NoError(t, err)

	again, err := c.Decode(out)
	require.NoError(t, err)

	g2, err := again.Group(73)
	require.NoError(t, err)
	got, _ := g2.Entry(0).Get(11)
	assert.Equal(t, "B", got)

	assert.True(t, message.Equal(reordered, again), "diff: %s", message.Compare(reordered, again))
	assert.False(t, message.Equal(original, again), "entry order must survive the round trip")
}

func TestEncodeDecodeRoundTripIsEqual(t *testing.T) {
	c := New(WithSeparator('|'), WithSpecification(orderListSpec()))

	in := []byte("8=FIX.4.2|9=999|35=E|73=1|11=A|78=1|79=ACC1|80=5|38=10|55=X|10=000|")
	m, err := c.Decode(in)
	require.NoError(t, err)

	out, err := c.Encode(m)
	require.NoError(t, err)

	again, err := c.Decode(out)
	require.NoError(t, err)

	assert.True(t, message.Equal(m, again), "diff: %s", message.Compare(m, again))
}

func TestEncodeTypedValue(t *testing.T) {
	c := New(WithSeparator('|'), WithRawTrailer(), WithConverters(values.Map{44: values.Decimal{}}))

	m := message.New()
	m.Set(35, "D")
	m.SetTyped(44, "", decimal.RequireFromString("1.25"))

	out, err := c.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, "35=D|44=1.25|", string(out))
}

func TestEncodeTypedValueOfWrongType(t *testing.T) {
	c := New(WithSeparator('|'), WithConverters(values.Map{44: values.Decimal{}}))

	m := message.New()
	m.SetTyped(44, "1.25", struct{}{})

	out, err := c.Encode(m)
	assert.Error(t, err)
	assert.Nil(t, out, "no partial buffer on error")
}

func TestMessageToBufferUsesCodec(t *testing.T) {
	c := New(WithSeparator('|'), WithRawTrailer())

	m := message.New()
	m.Set(35, "A")

	out, err := m.ToBuffer(c)
	require.NoError(t, err)
	assert.Equal(t, "35=A|", string(out))
}

func TestEncodedTrailerSatisfiesIntegrityChecks(t *testing.T) {
	c := New(WithSeparator('|'), WithSpecification(orderListSpec()))

	m, err := c.Decode([]byte("8=FIX.4.2|9=0|35=E|73=1|11=A|38=10|10=000|"))
	require.NoError(t, err)

	out, err := c.Encode(m)
	require.NoError(t, err)

	strict := New(WithSeparator('|'), WithSpecification(orderListSpec()), WithIntegrityChecks())
	_, err = strict.Decode(out)
	assert.NoError(t, err, "recomputed trailer must verify: %s", out)
}
