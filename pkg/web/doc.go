// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package web contains HTTP request and client configurations.
HTTPConfig structure embeds both of them, and it's the structure intended to be used as part of
the backend section of a configuration file.
*/
package web
