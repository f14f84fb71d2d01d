// dictionary.go
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
package spec

import "encoding/xml"

// XML shape of a QuickFIX dictionary file. Group elements are named after
// their counting field; nesting is arbitrary and components are declared once
// and referenced by name.

type dictionary struct {
	XMLName     xml.Name        `xml:"fix"`
	Major       string          `xml:"major,attr"`
	Minor       string          `xml:"minor,attr"`
	ServicePack string          `xml:"servicepack,attr"`
	Fields      []fieldElem     `xml:"fields>field"`
	Messages    []messageElem   `xml:"messages>message"`
	Components  []componentElem `xml:"components>component"`
	Header      componentElem   `xml:"header"`
	Trailer     componentElem   `xml:"trailer"`
}

type fieldElem struct {
	Name   string      `xml:"name,attr"`
	Number int         `xml:"number,attr"`
	Type   string      `xml:"type,attr"`
	Values []valueElem `xml:"value"`
}

type valueElem struct {
	Enum        string `xml:"enum,attr"`
	Description string `xml:"description,attr"`
}

type fieldRef struct {
	Name     string `xml:"name,attr"`
	Required string `xml:"required,attr"`
}

type componentRef struct {
	Name     string `xml:"name,attr"`
	Required string `xml:"required,attr"`
}

type groupElem struct {
	Name       string         `xml:"name,attr"`
	Required   string         `xml:"required,attr"`
	Fields     []fieldRef     `xml:"field"`
	Groups     []groupElem    `xml:"group"`
	Components []componentRef `xml:"component"`
}

type componentElem struct {
	Name       string         `xml:"name,attr"`
	Fields     []fieldRef     `xml:"field"`
	Groups     []groupElem    `xml:"group"`
	Components []componentRef `xml:"component"`
}

type messageElem struct {
	Name       string         `xml:"name,attr"`
	MsgType    string         `xml:"msgtype,attr"`
	MsgCat     string         `xml:"msgcat,attr"`
	Fields     []fieldRef     `xml:"field"`
	Groups     []groupElem    `xml:"group"`
	Components []componentRef `xml:"component"`
}
